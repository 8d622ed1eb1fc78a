package service

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bluesky-social/labeld/label"
	"github.com/bluesky-social/labeld/store"

	"github.com/ipfs/go-cid"
	"github.com/labstack/echo/v4"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 250
)

type queryLabelsResponse struct {
	Cursor string         `json:"cursor"`
	Labels []*label.Label `json:"labels"`
}

// GET /xrpc/com.atproto.label.queryLabels
func (s *Service) HandleQueryLabels(c echo.Context) error {
	ctx := c.Request().Context()
	queriesHandledCounter.Inc()

	limit := defaultQueryLimit
	if limitVal := c.QueryParam("limit"); limitVal != "" {
		parsed, err := strconv.Atoi(limitVal)
		if err != nil {
			return invalidRequest("limit must be an integer")
		}
		if parsed < 1 || parsed > maxQueryLimit {
			return invalidRequest("limit must be between 1 and %d", maxQueryLimit)
		}
		limit = parsed
	}

	var cursor int64
	cursorVal := c.QueryParam("cursor")
	if cursorVal != "" {
		parsed, err := strconv.ParseInt(cursorVal, 10, 64)
		if err != nil || parsed < 0 {
			return invalidRequest("cursor must be a non-negative integer")
		}
		cursor = parsed
	}

	uriPatterns := c.QueryParams()["uriPatterns"]
	sources := c.QueryParams()["sources"]

	recs, err := s.store.ScanFiltered(ctx, uriPatterns, sources, cursor, limit)
	if err != nil {
		if errors.Is(err, store.ErrInvalidPattern) {
			return invalidRequest("%s", err.Error())
		}
		return err
	}

	labels := make([]*label.Label, 0, len(recs))
	nextCursor := cursorVal
	for _, rec := range recs {
		if err := s.store.EnsureSigned(ctx, rec); err != nil {
			return err
		}
		labels = append(labels, rec.Label())
		nextCursor = strconv.FormatUint(rec.ID, 10)
	}
	if nextCursor == "" {
		nextCursor = "0"
	}

	return c.JSON(http.StatusOK, queryLabelsResponse{
		Cursor: nextCursor,
		Labels: labels,
	})
}

const modEventLabelType = "tools.ozone.moderation.defs#modEventLabel"

type modEvent struct {
	Type            string   `json:"$type"`
	CreateLabelVals []string `json:"createLabelVals"`
	NegateLabelVals []string `json:"negateLabelVals"`
	Comment         *string  `json:"comment,omitempty"`
}

type eventSubject struct {
	Type string `json:"$type"`
	DID  string `json:"did,omitempty"`
	URI  string `json:"uri,omitempty"`
	CID  string `json:"cid,omitempty"`
}

type emitEventRequest struct {
	Event     modEvent     `json:"event"`
	Subject   eventSubject `json:"subject"`
	CreatedBy string       `json:"createdBy"`
}

type emitEventResponse struct {
	Labels []*label.Label `json:"labels"`
}

// resolveSubject maps the request subject to label target fields
func resolveSubject(subject eventSubject) (uri string, cidStr *string, err error) {
	switch subject.Type {
	case "com.atproto.admin.defs#repoRef":
		if !strings.HasPrefix(subject.DID, "did:") {
			return "", nil, invalidRequest("repoRef subject requires a did")
		}
		return subject.DID, nil, nil
	case "com.atproto.repo.strongRef":
		if subject.URI == "" {
			return "", nil, invalidRequest("strongRef subject requires a uri")
		}
		if _, err := cid.Decode(subject.CID); err != nil {
			return "", nil, invalidRequest("strongRef subject cid is invalid: %s", err)
		}
		return subject.URI, &subject.CID, nil
	default:
		return "", nil, invalidRequest("unsupported subject type: %q", subject.Type)
	}
}

// POST /xrpc/tools.ozone.moderation.emitEvent
func (s *Service) HandleEmitEvent(c echo.Context) error {
	ctx := c.Request().Context()

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return NewXRPCError(http.StatusUnauthorized, ErrNameAuthRequired, "authentication required")
	}
	issuer, err := s.validator.Validate(ctx, strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		s.log.Info("rejecting write with invalid auth token", "err", err)
		return NewXRPCError(http.StatusUnauthorized, ErrNameAuthRequired, "invalid auth token")
	}
	if issuer != s.config.IssuerDID {
		return NewXRPCError(http.StatusForbidden, ErrNameUnauthorized, "issuer is not permitted to create labels")
	}

	if !s.limits.getOrCreate(issuer).AllowAll() {
		writesRateLimitedCounter.Inc()
		return NewXRPCError(http.StatusTooManyRequests, ErrNameRateLimitExceeded, "write rate limit exceeded")
	}

	var req emitEventRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest("invalid request body")
	}

	if req.Event.Type != modEventLabelType {
		return invalidRequest("unsupported event type: %q", req.Event.Type)
	}
	if len(req.Event.CreateLabelVals) == 0 && len(req.Event.NegateLabelVals) == 0 {
		return invalidRequest("label event requires at least one label value")
	}

	uri, cidStr, err := resolveSubject(req.Subject)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var labels []*label.Label
	for _, val := range req.Event.CreateLabelVals {
		labels = append(labels, &label.Label{
			SourceDID: s.config.IssuerDID,
			URI:       uri,
			CID:       cidStr,
			Val:       val,
			CreatedAt: now,
			Version:   label.ATProtoLabelVersion,
		})
	}
	neg := true
	for _, val := range req.Event.NegateLabelVals {
		labels = append(labels, &label.Label{
			SourceDID: s.config.IssuerDID,
			URI:       uri,
			CID:       cidStr,
			Val:       val,
			Negated:   &neg,
			CreatedAt: now,
			Version:   label.ATProtoLabelVersion,
		})
	}

	recs, err := s.appendAndPublish(ctx, labels)
	if err != nil {
		return err
	}

	out := emitEventResponse{Labels: make([]*label.Label, 0, len(recs))}
	for _, rec := range recs {
		if rec.Neg != nil && *rec.Neg {
			labelsCreatedCounter.WithLabelValues("true").Inc()
		} else {
			labelsCreatedCounter.WithLabelValues("false").Inc()
		}
		out.Labels = append(out.Labels, rec.Label())
	}

	return c.JSON(http.StatusOK, out)
}
