package converter

import (
	"context"
	"errors"
	"fmt"

	"github.com/ginjaninja78/quote-converter/internal/source"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// ErrNoData is returned for a quote whose rows were all filtered out.
var ErrNoData = errors.New("no data processed")

// =============================================================================
// BATCH CONVERSION
// =============================================================================

// Outcome is the result of one quote in a batch.
type Outcome struct {
	Quote  source.Source
	Result *Result
	Err    error
}

// ConvertBatch converts several quotes for the same customer. The template,
// catalog and customer directory are loaded once and shared.
//
// PROCESSING:
//   - At most limit quotes are converted at once (limit < 1 means 1)
//   - A failing quote does not stop the others
//   - An empty result counts as a failure wrapping ErrNoData
//
// RETURNS:
//   - One Outcome per quote, in input order.
//   - The combined errors of every failed quote (nil when all succeeded), or
//     the reference loading error, in which case no quote was read.
func (c *Converter) ConvertBatch(ctx context.Context, base Input, quotes []source.Source, limit int) ([]Outcome, error) {
	refs, err := c.LoadReferences(ctx, base)
	if err != nil {
		return nil, err
	}

	if limit < 1 {
		limit = 1
	}

	outcomes := make([]Outcome, len(quotes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, q := range quotes {
		outcomes[i].Quote = q
		g.Go(func() error {
			res, err := c.ConvertQuote(gctx, refs, q, base.CustomerID)
			if err == nil && res.Empty() {
				err = ErrNoData
			}
			outcomes[i].Result = res
			if err != nil {
				outcomes[i].Err = fmt.Errorf("%s: %w", q.String(), err)
			}
			// Per-quote failures are reported through outcomes so the group
			// context stays alive for the remaining quotes.
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	for _, o := range outcomes {
		errs = multierr.Append(errs, o.Err)
	}
	return outcomes, errs
}
