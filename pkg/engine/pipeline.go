package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mtgtools/arbitro-go/pkg/logging"
	"github.com/mtgtools/arbitro-go/pkg/metrics"
	"github.com/mtgtools/arbitro-go/pkg/money"
	"github.com/mtgtools/arbitro-go/pkg/rates"
	"github.com/mtgtools/arbitro-go/pkg/sources"
)

// State is the pipeline's lifecycle state. Runs move forward only; Done and
// Failed are terminal.
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateFiltering   State = "filtering"
	StateNormalizing State = "normalizing"
	StateRanking     State = "ranking"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Outcome classifies how a completed run ended. Empty result sets are
// outcomes, not errors.
type Outcome string

const (
	OutcomeRanked            Outcome = "ranked"
	OutcomeNoEligibleOffers  Outcome = "no_eligible_offers"
	OutcomeNoComparableCards Outcome = "no_comparable_cards"
	OutcomeFailed            Outcome = "failed"
)

// Config holds the pipeline's run parameters.
type Config struct {
	TargetCurrency     string
	DestinationCountry string
	Constraints        Constraints
	RankMode           Mode
	Retry              RetryPolicy
	// CallTimeout bounds a single source call; RunTimeout bounds a whole run.
	CallTimeout time.Duration
	RunTimeout  time.Duration
	// MarketplaceA and MarketplaceB are the two sides of an arbitrage scan.
	// The gap is always side A minus side B.
	MarketplaceA sources.Marketplace
	MarketplaceB sources.Marketplace
}

// Deps are the pipeline's pluggable collaborators. Only the dependencies
// needed by the operations actually invoked must be set.
type Deps struct {
	Listings sources.ListingSource
	Cards    sources.CardListSource
	Prices   sources.PriceSource
	Rates    rates.Provider
	Logger   *logging.Logger
}

// Pipeline orchestrates fetch, filter, normalize and rank for both the
// best-offer and the dual-marketplace comparison flows. A Pipeline is safe
// for concurrent use; every run gets its own state and rate memo.
type Pipeline struct {
	cfg    Config
	deps   Deps
	logger *logging.Logger
}

func NewPipeline(cfg Config, deps Deps) (*Pipeline, error) {
	if cfg.TargetCurrency == "" {
		return nil, fmt.Errorf("%w: target currency is required", ErrNotConfigured)
	}
	if deps.Rates == nil {
		return nil, fmt.Errorf("%w: rate provider is required", ErrNotConfigured)
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	if cfg.RankMode == "" {
		cfg.RankMode = ModeMinimize
	}
	return &Pipeline{cfg: cfg, deps: deps, logger: logger}, nil
}

// BestOfferResult is the outcome of a single-card best-offer run. Analyzed
// counts offers that passed validation; Excluded counts eligible-filter
// rejections.
type BestOfferResult struct {
	CardName string        `json:"card_name"`
	State    State         `json:"state"`
	Outcome  Outcome       `json:"outcome"`
	Best     *RankedOffer  `json:"best,omitempty"`
	Ranked   []RankedOffer `json:"ranked"`
	Analyzed int           `json:"analyzed"`
	Excluded int           `json:"excluded"`
}

// ArbitrageResult is the outcome of a dual-marketplace comparison run.
// Analyzed contains every quote, complete and incomplete; Ranked contains
// only the complete ones.
type ArbitrageResult struct {
	State    State             `json:"state"`
	Outcome  Outcome           `json:"outcome"`
	Currency string            `json:"currency"`
	Ranked   []RankedQuote     `json:"ranked"`
	Analyzed []NormalizedQuote `json:"analyzed"`
}

// ProgressFunc is invoked after each card of an arbitrage scan completes.
type ProgressFunc func(done, total int, cardName string)

// run tracks one pipeline execution's state and per-stage timing.
type run struct {
	mode       string
	state      State
	logger     *logging.Logger
	stageStart time.Time
}

func newRun(mode string, logger *logging.Logger) *run {
	return &run{mode: mode, state: StateIdle, logger: logger}
}

func (r *run) transition(next State) {
	switch r.state {
	case StateFetching, StateFiltering, StateNormalizing, StateRanking:
		metrics.RecordPipelineStage(r.mode, string(r.state), time.Since(r.stageStart))
	}
	r.logger.Debug("pipeline state change", "mode", r.mode, "from", string(r.state), "to", string(next))
	r.state = next
	r.stageStart = time.Now()
}

func (r *run) fail(ctx context.Context, err error) error {
	r.transition(StateFailed)
	metrics.RecordPipelineRun(r.mode, string(OutcomeFailed))
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		err = fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	r.logger.Error("pipeline run failed", "mode", r.mode, "error", err.Error())
	return err
}

func (r *run) done(outcome Outcome) {
	r.transition(StateDone)
	metrics.RecordPipelineRun(r.mode, string(outcome))
}

func (p *Pipeline) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.RunTimeout > 0 {
		return context.WithTimeout(ctx, p.cfg.RunTimeout)
	}
	return context.WithCancel(ctx)
}

func (p *Pipeline) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.CallTimeout > 0 {
		return context.WithTimeout(ctx, p.cfg.CallTimeout)
	}
	return context.WithCancel(ctx)
}

// BestOffer fetches all listings for one card, filters, normalizes into the
// target currency and ranks by ascending total price.
func (p *Pipeline) BestOffer(ctx context.Context, cardName string) (*BestOfferResult, error) {
	if cardName == "" {
		return nil, ErrEmptyCardName
	}
	if p.deps.Listings == nil {
		return nil, fmt.Errorf("%w: listing source is required for best-offer runs", ErrNotConfigured)
	}

	ctx, cancel := p.runContext(ctx)
	defer cancel()

	r := newRun(string(ModeMinimize), p.logger)
	result := &BestOfferResult{CardName: cardName, Ranked: []RankedOffer{}}

	r.transition(StateFetching)
	var raws []sources.RawListing
	err := fetchWithRetry(ctx, p.logger, p.deps.Listings.Name(), p.cfg.Retry, func(ctx context.Context) error {
		callCtx, callCancel := p.callContext(ctx)
		defer callCancel()
		var fetchErr error
		raws, fetchErr = p.deps.Listings.FetchListings(callCtx, cardName, p.cfg.DestinationCountry)
		return fetchErr
	})
	if err != nil {
		return nil, r.fail(ctx, err)
	}

	offers := make([]Offer, 0, len(raws))
	for _, raw := range raws {
		offer, convErr := OfferFromRaw(raw, p.deps.Listings.Name())
		if convErr != nil {
			p.logger.Warn("rejecting invalid listing",
				"card", cardName,
				"seller", raw.SellerName,
				"error", convErr.Error())
			metrics.RecordRecordRejected(p.deps.Listings.Name())
			continue
		}
		offers = append(offers, offer)
	}
	result.Analyzed = len(offers)
	metrics.RecordRecordsAnalyzed(r.mode, len(offers))

	r.transition(StateFiltering)
	eligible, excluded := partition(offers, p.cfg.Constraints)
	result.Excluded = len(excluded)
	if len(eligible) == 0 {
		r.done(OutcomeNoEligibleOffers)
		result.State = StateDone
		result.Outcome = OutcomeNoEligibleOffers
		p.logger.Info("no eligible offers", "card", cardName, "analyzed", result.Analyzed, "excluded", result.Excluded)
		return result, nil
	}

	r.transition(StateNormalizing)
	normalizer := NewNormalizer(p.cfg.TargetCurrency, rates.NewMemo(p.deps.Rates))
	normalized, err := normalizer.NormalizeOffers(ctx, eligible)
	if err != nil {
		return nil, r.fail(ctx, err)
	}

	r.transition(StateRanking)
	ranked := RankOffers(normalized)

	r.done(OutcomeRanked)
	result.State = StateDone
	result.Outcome = OutcomeRanked
	result.Ranked = ranked
	result.Best = &ranked[0]
	p.logger.Info("best offer found",
		"card", cardName,
		"seller", result.Best.Offer.SellerName,
		"total", result.Best.Total.String(),
		"candidates", len(ranked))
	return result, nil
}

// TopCards fetches the current top-N card names with the configured retries.
func (p *Pipeline) TopCards(ctx context.Context, n int) ([]string, error) {
	if p.deps.Cards == nil {
		return nil, fmt.Errorf("%w: card list source is required", ErrNotConfigured)
	}
	ctx, cancel := p.runContext(ctx)
	defer cancel()

	var cards []string
	err := fetchWithRetry(ctx, p.logger, p.deps.Cards.Name(), p.cfg.Retry, func(ctx context.Context) error {
		callCtx, callCancel := p.callContext(ctx)
		defer callCancel()
		var fetchErr error
		cards, fetchErr = p.deps.Cards.FetchTopCards(callCtx, n)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// CompareMarkets prices every card on both configured marketplaces and ranks
// the complete quotes by descending gap.
func (p *Pipeline) CompareMarkets(ctx context.Context, cards []string) (*ArbitrageResult, error) {
	return p.CompareMarketsWithProgress(ctx, cards, nil)
}

// CompareMarketsWithProgress is CompareMarkets with a per-card progress
// callback. Cards whose fetch fails on one side become incomplete quotes;
// the run fails only when every card fails on both sides or a rate lookup
// fails.
func (p *Pipeline) CompareMarketsWithProgress(ctx context.Context, cards []string, progress ProgressFunc) (*ArbitrageResult, error) {
	if p.deps.Prices == nil {
		return nil, fmt.Errorf("%w: price source is required for comparison runs", ErrNotConfigured)
	}
	if len(cards) == 0 {
		return nil, ErrEmptyCardName
	}

	ctx, cancel := p.runContext(ctx)
	defer cancel()

	r := newRun(string(ModeMaximizeGap), p.logger)
	result := &ArbitrageResult{
		Currency: p.cfg.TargetCurrency,
		Ranked:   []RankedQuote{},
		Analyzed: []NormalizedQuote{},
	}

	normalizer := NewNormalizer(p.cfg.TargetCurrency, rates.NewMemo(p.deps.Rates))

	r.transition(StateFetching)
	quotes := make([]quoteFetch, 0, len(cards))
	failedCards := 0
	for i, card := range cards {
		if err := ctx.Err(); err != nil {
			return nil, r.fail(ctx, err)
		}
		qf := p.fetchQuote(ctx, card)
		if qf.errA != nil && qf.errB != nil {
			failedCards++
			p.logger.Warn("card failed on both sides",
				"card", card,
				"side_a", qf.errA.Error(),
				"side_b", qf.errB.Error())
		}
		quotes = append(quotes, qf)
		if progress != nil {
			progress(i+1, len(cards), card)
		}
	}
	if failedCards == len(cards) {
		return nil, r.fail(ctx, fmt.Errorf("%w: all %d cards failed on both marketplaces", sources.ErrSourceUnavailable, len(cards)))
	}

	r.transition(StateNormalizing)
	for _, qf := range quotes {
		nq, err := normalizer.NormalizeQuote(ctx, qf.quote)
		if err != nil {
			return nil, r.fail(ctx, err)
		}
		if nq.Incomplete {
			if reason := qf.failureReason(); reason != "" {
				nq.Reason = reason
			}
		}
		result.Analyzed = append(result.Analyzed, nq)
	}
	metrics.RecordRecordsAnalyzed(r.mode, len(result.Analyzed))

	r.transition(StateRanking)
	ranked := RankQuotes(result.Analyzed)

	if len(ranked) == 0 {
		r.done(OutcomeNoComparableCards)
		result.State = StateDone
		result.Outcome = OutcomeNoComparableCards
		p.logger.Info("no comparable cards", "cards", len(cards), "incomplete", len(result.Analyzed))
		return result, nil
	}

	r.done(OutcomeRanked)
	result.State = StateDone
	result.Outcome = OutcomeRanked
	result.Ranked = ranked
	p.logger.Info("comparison complete",
		"cards", len(cards),
		"comparable", len(ranked),
		"top_card", ranked[0].CardName,
		"top_gap", ranked[0].Gap.String())
	return result, nil
}

// quoteFetch carries one card's two-sided fetch result, including per-side
// errors for incomplete-quote reporting.
type quoteFetch struct {
	quote PriceQuote
	errA  error
	errB  error
}

func (q quoteFetch) failureReason() string {
	switch {
	case q.errA != nil && q.errB != nil:
		return fmt.Sprintf("fetch failed on both sides: %v; %v", q.errA, q.errB)
	case q.errA != nil:
		return fmt.Sprintf("fetch failed on source A: %v", q.errA)
	case q.errB != nil:
		return fmt.Sprintf("fetch failed on source B: %v", q.errB)
	}
	return ""
}

// fetchQuote prices one card on both marketplaces concurrently. The sides
// are independent: a failure on one never cancels the other.
func (p *Pipeline) fetchQuote(ctx context.Context, cardName string) quoteFetch {
	var (
		priceA, priceB money.Money
		okA, okB       bool
		errA, errB     error
	)

	fetch := func(marketplace sources.Marketplace, price *money.Money, ok *bool, outErr *error) func() error {
		return func() error {
			*outErr = fetchWithRetry(ctx, p.logger, p.deps.Prices.Name(), p.cfg.Retry, func(ctx context.Context) error {
				callCtx, cancel := p.callContext(ctx)
				defer cancel()
				var err error
				*price, *ok, err = p.deps.Prices.FetchPrice(callCtx, cardName, marketplace)
				return err
			})
			return nil
		}
	}

	var g errgroup.Group
	g.Go(fetch(p.cfg.MarketplaceA, &priceA, &okA, &errA))
	g.Go(fetch(p.cfg.MarketplaceB, &priceB, &okB, &errB))
	_ = g.Wait()

	qf := quoteFetch{quote: PriceQuote{CardName: cardName}, errA: errA, errB: errB}
	if errA == nil && okA {
		qf.quote.SourceA = &priceA
	}
	if errB == nil && okB {
		qf.quote.SourceB = &priceB
	}
	return qf
}
