// Package preprocess cleans a student performance table for model training:
// it drops identifier columns, imputes missing values and encodes the
// categorical fields as integer codes.
package preprocess

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"

	"github.com/rs/zerolog"
)

// DefaultSeed seeds the generator used for categorical imputation.
const DefaultSeed uint64 = 42

// Options holds configuration for the Preprocessor
type Options struct {
	// Logger receives one progress event per stage. Defaults to a no-op logger.
	Logger zerolog.Logger

	// HTTPClient fetches remote sources. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Seed for the categorical imputation generator. Defaults to DefaultSeed.
	Seed uint64
}

// Option is a functional option for configuring the Preprocessor
type Option func(*Options)

// DefaultOptions returns the default options
func DefaultOptions() *Options {
	return &Options{
		Logger: zerolog.Nop(),
		Seed:   DefaultSeed,
	}
}

// WithLogger sets the logger for progress and failure events
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithHTTPClient sets the client used for http(s) sources
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = c
	}
}

// WithSeed overrides DefaultSeed
func WithSeed(seed uint64) Option {
	return func(o *Options) {
		o.Seed = seed
	}
}

// Preprocessor applies the fixed cleaning stages to one table per call.
type Preprocessor struct {
	options *Options
}

// New creates a Preprocessor with the given options
func New(opts ...Option) *Preprocessor {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Preprocessor{options: options}
}

// Preprocess loads source and runs, in order: drop identifier columns,
// random categorical imputation, mean-ceiling numeric imputation and label
// encoding. It never returns an error: if the source cannot be loaded the
// failure is logged and the empty table is returned.
func (p *Preprocessor) Preprocess(ctx context.Context, source string) *Table {
	log := p.options.Logger.With().Str("source", source).Logger()

	t, err := Load(ctx, source, p.options.HTTPClient)
	if err != nil {
		log.Error().Err(err).Msg("failed to load dataset")
		return Empty()
	}
	log.Info().Int("rows", t.Rows()).Int("columns", len(t.Columns())).Msg("1. dataset loaded")

	// A fresh generator per call keeps repeated calls reproducible.
	rng := rand.New(rand.NewPCG(p.options.Seed, p.options.Seed))

	if err := p.run(t, rng, log); err != nil {
		log.Error().Err(err).Msg("preprocessing failed")
		return Empty()
	}

	log.Info().Int("rows", t.Rows()).Msg("6. preprocessing complete")
	return t
}

func (p *Preprocessor) run(t *Table, rng *rand.Rand, log zerolog.Logger) error {
	/* Drop identifier columns ---------------------------------------------- */
	dropped, err := DropColumns(t, DroppedColumns...)
	if err != nil {
		return err
	}
	log.Info().Strs("dropped", dropped).Msg("2. identifier columns removed")

	/* Categorical imputation ----------------------------------------------- */
	ps, err := ImputeRandom(t, ColParentalSupport, ParentalSupportLabels, rng)
	if err != nil {
		return err
	}
	oc, err := ImputeRandom(t, ColOnlineClasses, OnlineClassesLabels, rng)
	if err != nil {
		return err
	}
	log.Info().
		Int(ColParentalSupport, ps).
		Int(ColOnlineClasses, oc).
		Msg("3. categorical values imputed")

	/* Numeric imputation --------------------------------------------------- */
	numeric := zerolog.Dict()
	for _, col := range NumericColumns {
		fill, n, err := ImputeMeanCeil(t, col)
		if err != nil {
			return err
		}
		if n > 0 {
			numeric.Int(col, n)
			log.Debug().Str("column", col).Float64("fill", fill).Int("cells", n).Msg("numeric fill")
		}
	}
	log.Info().Dict("filled", numeric).Msg("4. numeric values imputed")

	/* Encoding ------------------------------------------------------------- */
	for _, m := range EncodedColumns {
		err := Encode(t, m)
		switch {
		case err == nil:
		case errors.Is(err, ErrUnmappedLabel):
			log.Warn().Err(err).Str("column", m.Column).Msg("unmapped labels set to missing")
		default:
			return err
		}
	}
	log.Info().Msg("5. categorical values encoded")
	return nil
}
