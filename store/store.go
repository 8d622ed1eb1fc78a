// Package store persists labels in an append-only log backed by gorm,
// assigning each row a strictly increasing sequence id at insert time.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bluesky-social/labeld/label"
	"github.com/bluesky-social/labeld/stream"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

var (
	// ErrInvalidPattern indicates a uriPattern with a wildcard anywhere
	// but the trailing position.
	ErrInvalidPattern = errors.New("invalid uri pattern: wildcard only allowed at end")
	// ErrSigningFailed indicates a signature backfill that did not land.
	ErrSigningFailed = errors.New("failed to persist label signature")
	// ErrWriteFailed indicates an append that persisted no rows.
	ErrWriteFailed = errors.New("failed to persist labels")
)

// LabelRecord is a single label row. The auto-assigned primary key doubles
// as the stream sequence id and the query cursor.
type LabelRecord struct {
	ID  uint64 `gorm:"primarykey"`
	Src string `gorm:"index"`
	URI string `gorm:"index"`
	CID *string
	Val string
	Neg *bool
	Cts string
	Exp *string
	Ver int64
	Sig []byte
}

func (LabelRecord) TableName() string {
	return "labels"
}

// Label converts the row back to its wire form.
func (rec *LabelRecord) Label() *label.Label {
	return &label.Label{
		SourceDID: rec.Src,
		URI:       rec.URI,
		CID:       rec.CID,
		Val:       rec.Val,
		Negated:   rec.Neg,
		CreatedAt: rec.Cts,
		ExpiresAt: rec.Exp,
		Version:   rec.Ver,
		Sig:       rec.Sig,
	}
}

func recordFromLabel(lbl *label.Label) LabelRecord {
	return LabelRecord{
		Src: lbl.SourceDID,
		URI: lbl.URI,
		CID: lbl.CID,
		Val: lbl.Val,
		Neg: lbl.Negated,
		Cts: lbl.CreatedAt,
		Exp: lbl.ExpiresAt,
		Ver: lbl.Version,
		Sig: lbl.Sig,
	}
}

type Store struct {
	db     *gorm.DB
	signer label.Signer
	log    *slog.Logger
}

func NewStore(db *gorm.DB, signer label.Signer, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.AutoMigrate(&LabelRecord{}); err != nil {
		return nil, fmt.Errorf("migrating label schema: %w", err)
	}
	return &Store{
		db:     db,
		signer: signer,
		log:    logger.With("system", "store"),
	}, nil
}

// Append signs and persists the given labels in one transaction, assigning
// sequence ids. The returned records carry the assigned ids in input order.
func (s *Store) Append(ctx context.Context, labels []*label.Label) ([]*LabelRecord, error) {
	ctx, span := otel.Tracer("store").Start(ctx, "Append")
	defer span.End()

	if len(labels) == 0 {
		return nil, nil
	}

	recs := make([]*LabelRecord, 0, len(labels))
	for _, lbl := range labels {
		if err := lbl.Sign(s.signer); err != nil {
			return nil, fmt.Errorf("signing label: %w", err)
		}
		rec := recordFromLabel(lbl)
		recs = append(recs, &rec)
	}

	res := s.db.WithContext(ctx).Create(recs)
	if res.Error != nil {
		return nil, fmt.Errorf("appending labels: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrWriteFailed
	}
	return recs, nil
}

// MaxSeq returns the highest sequence id assigned so far, zero when the
// log is empty.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	res := s.db.WithContext(ctx).Model(&LabelRecord{}).Select("COALESCE(MAX(id), 0)").Scan(&seq)
	if res.Error != nil {
		return 0, fmt.Errorf("reading max sequence: %w", res.Error)
	}
	return seq, nil
}

// ScanFrom returns up to limit rows with id > cursor, ascending.
func (s *Store) ScanFrom(ctx context.Context, cursor int64, limit int) ([]*LabelRecord, error) {
	var recs []*LabelRecord
	res := s.db.WithContext(ctx).Where("id > ?", cursor).Order("id asc").Limit(limit).Find(&recs)
	if res.Error != nil {
		return nil, fmt.Errorf("scanning labels: %w", res.Error)
	}
	return recs, nil
}

// ScanFiltered returns up to limit rows with id > cursor matching the
// given uri patterns and source dids, ascending. A bare "*" in either
// list disables that filter entirely; patterns support a trailing "*"
// prefix match, with LIKE metacharacters in the pattern matched literally.
func (s *Store) ScanFiltered(ctx context.Context, uriPatterns, sources []string, cursor int64, limit int) ([]*LabelRecord, error) {
	ctx, span := otel.Tracer("store").Start(ctx, "ScanFiltered")
	defer span.End()

	q := s.db.WithContext(ctx).Where("id > ?", cursor).Order("id asc").Limit(limit)

	srcQuery := s.db
	filterSources := true
	for _, src := range sources {
		if src == "*" {
			filterSources = false
			break
		}
		srcQuery = srcQuery.Or("src = ?", src)
	}
	if filterSources && len(sources) > 0 {
		q = q.Where(srcQuery)
	}

	uriQuery := s.db
	filterURIs := true
	for _, pat := range uriPatterns {
		if pat == "*" {
			filterURIs = false
			break
		}
		if strings.HasSuffix(pat, "*") {
			prefix := strings.TrimSuffix(pat, "*")
			if strings.Contains(prefix, "*") {
				return nil, ErrInvalidPattern
			}
			uriQuery = uriQuery.Or("uri LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%")
		} else {
			if strings.Contains(pat, "*") {
				return nil, ErrInvalidPattern
			}
			uriQuery = uriQuery.Or("uri = ?", pat)
		}
	}
	if filterURIs && len(uriPatterns) > 0 {
		q = q.Where(uriQuery)
	}

	var recs []*LabelRecord
	res := q.Find(&recs)
	if res.Error != nil {
		return nil, fmt.Errorf("scanning labels: %w", res.Error)
	}
	return recs, nil
}

// escapeLike quotes LIKE metacharacters so that pattern prefixes match
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// EnsureSigned backfills the signature on a row persisted without one. It
// is a no-op for already-signed rows. Concurrent backfills of the same row
// may race; last write wins and every persisted signature is valid.
func (s *Store) EnsureSigned(ctx context.Context, rec *LabelRecord) error {
	if rec.Sig != nil {
		return nil
	}

	ctx, span := otel.Tracer("store").Start(ctx, "EnsureSigned")
	defer span.End()

	lbl := rec.Label()
	if err := lbl.Sign(s.signer); err != nil {
		return fmt.Errorf("signing label %d: %w", rec.ID, err)
	}

	res := s.db.WithContext(ctx).Model(&LabelRecord{}).Where("id = ?", rec.ID).Update("sig", lbl.Sig)
	if res.Error != nil {
		return fmt.Errorf("persisting signature for label %d: %w", rec.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSigningFailed
	}
	rec.Sig = lbl.Sig
	return nil
}

// playback batch size
const playbackPageSize = 500

// Playback implements eventmgr.PlaybackSource: every persisted row after
// since, as one stream frame per row, signed.
func (s *Store) Playback(ctx context.Context, since int64, cb func(*stream.LabelStreamEvent) error) error {
	cursor := since
	for {
		recs, err := s.ScanFrom(ctx, cursor, playbackPageSize)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if err := s.EnsureSigned(ctx, rec); err != nil {
				return err
			}
			evt := &stream.LabelStreamEvent{
				Labels: &stream.LabelBatch{
					Seq:    int64(rec.ID),
					Labels: []*label.Label{rec.Label()},
				},
			}
			if err := cb(evt); err != nil {
				return err
			}
			cursor = int64(rec.ID)
		}
		if len(recs) < playbackPageSize {
			return nil
		}
	}
}

// HeadSequence implements eventmgr.PlaybackSource.
func (s *Store) HeadSequence(ctx context.Context) (int64, error) {
	return s.MaxSeq(ctx)
}
