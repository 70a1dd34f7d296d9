package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ContentGenerator renders the HTML body of a notification email.
type ContentGenerator interface {
	Name() string
	Generate(ctx context.Context, c Content) (string, error)
}

var errEmptyContent = errors.New("generator returned empty content")

// Waterfall tries each tier in order and keeps the first non-empty body. The
// static template is always the last tier.
type Waterfall struct {
	tiers  []ContentGenerator
	logger *zap.Logger
}

func NewWaterfall(static *StaticTemplate, tiers []ContentGenerator, logger ...*zap.Logger) *Waterfall {
	l := zap.L().Named("notification.waterfall")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.waterfall")
	}

	all := make([]ContentGenerator, 0, len(tiers)+1)
	for _, t := range tiers {
		if t != nil {
			all = append(all, t)
		}
	}
	all = append(all, static)

	return &Waterfall{tiers: all, logger: l}
}

// Generate returns the body and the name of the tier that produced it.
func (w *Waterfall) Generate(ctx context.Context, c Content) (string, string) {
	for _, tier := range w.tiers {
		body, err := tier.Generate(ctx, c)
		if err == nil && strings.TrimSpace(body) == "" {
			err = errEmptyContent
		}
		if err != nil {
			w.logger.Warn("content tier failed, trying next",
				zap.String("tier", tier.Name()),
				zap.String("kind", string(c.Kind)),
				zap.Error(err),
			)
			continue
		}

		w.logger.Debug("content tier selected", zap.String("tier", tier.Name()))
		return body, tier.Name()
	}

	return lastResortBody(c), StaticTierName
}

// Tiers lists the tier names in the order they are tried.
func (w *Waterfall) Tiers() []string {
	names := make([]string, len(w.tiers))
	for i, t := range w.tiers {
		names[i] = t.Name()
	}
	return names
}

func lastResortBody(c Content) string {
	name, leaveType := "there", "leave"
	if c.Employee != nil {
		name = c.Employee.DisplayName()
	}
	if c.Leave != nil {
		leaveType = c.Leave.LeaveType
	}
	return fmt.Sprintf("<p>Dear %s,</p><p>Your %s request has been updated: %s.</p>", name, leaveType, c.Kind)
}
