package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"food-lens/api/internal/upload"
	"food-lens/api/internal/util"
	"food-lens/api/internal/vision"
)

// Result is what the pipeline hands to the response shaper.
type Result struct {
	Filename string
	vision.Result
}

// StoreError marks a failure of the transient upload store.
type StoreError struct{ Err error }

func (e *StoreError) Error() string { return "upload store: " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

// Annotator runs one uploaded image through store, encoder, engine and aggregator.
// It keeps no per-request state and is safe for concurrent use.
type Annotator struct {
	store    upload.Store
	engine   vision.Engine
	features []vision.FeatureRequest
	timeout  time.Duration
	log      *zap.Logger
}

func NewAnnotator(store upload.Store, engine vision.Engine, features []vision.FeatureRequest, timeout time.Duration, log *zap.Logger) *Annotator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Annotator{
		store:    store,
		engine:   engine,
		features: features,
		timeout:  timeout,
		log:      log,
	}
}

// Annotate never outlives ctx: caller cancellation aborts the outbound call.
func (a *Annotator) Annotate(ctx context.Context, img upload.Image, log *zap.Logger) (Result, error) {
	if log == nil {
		log = a.log
	}
	out := Result{Filename: img.Filename}

	if err := a.engine.Ready(); err != nil {
		log.Error("annotation engine not configured",
			zap.String("engine", a.engine.Name()),
			zap.Error(err))
		return out, fmt.Errorf("annotate: %w", err)
	}

	loc, err := a.store.Put(ctx, img.Filename, img.Data)
	if err != nil {
		return out, &StoreError{Err: err}
	}
	data, err := a.store.Get(ctx, loc)
	if err != nil {
		return out, &StoreError{Err: err}
	}

	payload := vision.Image{
		Content: vision.Encode(data),
		MIME:    util.SniffImageMIME(data),
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.engine.Annotate(callCtx, payload, a.features)
	took := time.Since(start)
	if err != nil {
		log.Warn("annotation failed",
			zap.String("engine", a.engine.Name()),
			zap.String("filename", img.Filename),
			zap.Int("size", len(data)),
			zap.Duration("took", took),
			zap.Error(err))
		return out, fmt.Errorf("annotate: %w", err)
	}

	agg, err := vision.Aggregate(resp)
	if err != nil {
		log.Warn("annotation reply rejected",
			zap.String("engine", a.engine.Name()),
			zap.Duration("took", took),
			zap.Error(err))
		return out, fmt.Errorf("aggregate: %w", err)
	}

	log.Info("image annotated",
		zap.String("engine", a.engine.Name()),
		zap.String("filename", img.Filename),
		zap.String("mime", payload.MIME),
		zap.Int("size", len(data)),
		zap.Int("findings", len(agg.Findings)),
		zap.Bool("empty", agg.Empty),
		zap.Duration("took", took))

	out.Result = agg
	return out, nil
}
