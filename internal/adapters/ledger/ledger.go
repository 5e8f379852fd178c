// Package ledger is the in-memory status ledger: it accumulates the stat
// changes collection advances push, split into base, percent and fraction
// channels.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/okian/codex/internal/domain/model"
	"github.com/okian/codex/pkg/logger"
	"github.com/okian/codex/pkg/metrics"
)

// Sentinel kinds for ledger errors.
var (
	ErrUnknownStat     = errors.New("unknown stat")
	ErrChannelMismatch = errors.New("stat change on wrong channel")
)

// Channel names, also used as metric labels.
const (
	ChannelBase     = "base"
	ChannelPercent  = "percent"
	ChannelFraction = "fraction"
)

// fractionEpsilon drops float residue left after a retract.
const fractionEpsilon = 1e-9

// Ledger sums stat changes per stat.
type Ledger struct {
	mu       sync.RWMutex
	base     map[model.StatType]int
	percent  map[model.StatType]int
	fraction map[model.StatType]float64
	logger   logger.Logger
}

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithLogger sets a custom logger for the ledger.
func WithLogger(l logger.Logger) Option {
	return func(lg *Ledger) {
		if l != nil {
			lg.logger = l
		}
	}
}

// New returns an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		base:     make(map[model.StatType]int),
		percent:  make(map[model.StatType]int),
		fraction: make(map[model.StatType]float64),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Push applies one signed change.
func (l *Ledger) Push(ctx context.Context, c model.StatChange) error {
	if !c.Stat.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownStat, int(c.Stat))
	}
	if c.IsFraction != c.Stat.IsFraction() {
		return fmt.Errorf("%w: %s fraction=%t", ErrChannelMismatch, c.Stat, c.IsFraction)
	}

	l.mu.Lock()
	channel := ChannelBase
	switch {
	case c.IsFraction:
		channel = ChannelFraction
		v := l.fraction[c.Stat] + c.Fraction
		if math.Abs(v) < fractionEpsilon {
			delete(l.fraction, c.Stat)
		} else {
			l.fraction[c.Stat] = v
		}
	case c.Stat.IsPercent():
		channel = ChannelPercent
		addInt(l.percent, c.Stat, c.Value)
	default:
		addInt(l.base, c.Stat, c.Value)
	}
	l.mu.Unlock()

	metrics.RecordLedgerPush(channel)
	l.logger.Debug(ctx, "stat change applied",
		logger.String("stat", c.Stat.String()),
		logger.String("channel", channel),
		logger.Int("value", c.Value),
		logger.Float64("fraction", c.Fraction),
	)
	return nil
}

func addInt(m map[model.StatType]int, s model.StatType, v int) {
	sum := m[s] + v
	if sum == 0 {
		delete(m, s)
		return
	}
	m[s] = sum
}

// Snapshot is a copy of the ledger keyed by stat name.
type Snapshot struct {
	Base     map[string]int     `json:"base"`
	Percent  map[string]int     `json:"percent"`
	Fraction map[string]float64 `json:"fraction"`
}

// Snapshot returns the current totals.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := Snapshot{
		Base:     make(map[string]int, len(l.base)),
		Percent:  make(map[string]int, len(l.percent)),
		Fraction: make(map[string]float64, len(l.fraction)),
	}
	for k, v := range l.base {
		s.Base[k.String()] = v
	}
	for k, v := range l.percent {
		s.Percent[k.String()] = v
	}
	for k, v := range l.fraction {
		s.Fraction[k.String()] = v
	}
	return s
}
