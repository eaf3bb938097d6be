package runtime

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/stroked/internal/config"
	"github.com/ayusman/stroked/internal/geom"
	"github.com/ayusman/stroked/internal/gesture"
	"github.com/ayusman/stroked/internal/profile"
)

// templateCache holds the preprocessed direction vectors for every gesture
// template in a profile database snapshot. Templates are recomputed only
// when the snapshot pointer changes, so the per-stroke cost is a map lookup.
type templateCache struct {
	mu       sync.Mutex
	snapshot *profile.DB
	vectors  map[string][]geom.Vector
}

// forSnapshot returns the template vectors for the given snapshot,
// rebuilding the cache if the snapshot changed since the last call.
func (c *templateCache) forSnapshot(snapshot *profile.DB, cfg config.MatchingConfig) map[string][]geom.Vector {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == snapshot {
		return c.vectors
	}

	vectors := make(map[string][]geom.Vector, len(snapshot.Bindings))
	preprocess := gesture.PreprocessConfig{
		SampleCount:     cfg.SampleCount,
		SmoothingWindow: cfg.SmoothingWindow,
		// Stored templates are trusted; the length gate only applies to
		// live strokes.
		MinTrackLength: 0,
	}
	if !cfg.Smoothing {
		preprocess.SmoothingWindow = 1
	}

	for id, serialized := range snapshot.Bindings {
		def, err := gesture.ParseGesture(serialized)
		if err != nil {
			logrus.WithError(err).WithField("gesture", id).Warn("skipping unparsable gesture template")
			continue
		}
		vecs, err := gesture.PreprocessPoints(def.Points, preprocess)
		if err != nil {
			logrus.WithError(err).WithField("gesture", id).Warn("skipping degenerate gesture template")
			continue
		}
		vectors[id] = vecs
	}

	c.snapshot = snapshot
	c.vectors = vectors
	return vectors
}
