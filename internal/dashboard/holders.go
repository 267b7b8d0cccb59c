package dashboard

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"solanalysis/internal/classify"
	"solanalysis/internal/domain"
	"solanalysis/internal/observability"
	"solanalysis/internal/solana"
)

var printer = message.NewPrinter(language.English)

// HolderCycle refreshes the whale wallet and popular token lists.
func (r *Runner) HolderCycle(ctx context.Context) {
	if !r.begin(CycleHolders) {
		r.logger.Println("Holder cycle already running, skipping...")
		return
	}
	defer r.end(CycleHolders)

	start := r.opts.Now()

	wallets := r.findWhales(ctx)
	r.agg.SetWallets(wallets)

	tokens := r.findTokens(ctx)
	r.agg.SetTokens(tokens)

	status := "ok"
	if ctx.Err() != nil {
		status = "error"
	}
	finished := r.opts.Now()
	observability.RecordCycle(CycleHolders, status, finished.Sub(start).Seconds(), finished.Unix())
	r.logger.Printf("Holder cycle: %d whales, %d tokens in %v", len(wallets), len(tokens), finished.Sub(start))
}

// findWhales returns the largest candidate wallets holding more than
// WhaleMinSOL, richest first.
func (r *Runner) findWhales(ctx context.Context) []domain.Wallet {
	solPrice := r.agg.Network().SOLPrice

	var whales []domain.Wallet
	for _, c := range r.opts.Wallets {
		if ctx.Err() != nil {
			break
		}

		pda, err := solana.IsProgramDerived(c.Address)
		if err != nil {
			r.logger.Printf("Skipping wallet %s: %v", c.Name, err)
			continue
		}

		lamports, err := r.rpc.GetBalance(ctx, c.Address)
		if err != nil {
			r.logger.Printf("Balance of %s: %v", c.Name, err)
			continue
		}

		balance := classify.LamportsToSOL(lamports)
		if balance <= r.opts.WhaleMinSOL {
			continue
		}

		whales = append(whales, domain.Wallet{
			Address:        c.Address,
			Name:           c.Name,
			Balance:        balance,
			Value:          balance * solPrice,
			ProgramDerived: pda,
		})
	}

	sort.SliceStable(whales, func(i, j int) bool {
		return whales[i].Balance > whales[j].Balance
	})
	if len(whales) > r.opts.WalletLimit {
		whales = whales[:r.opts.WalletLimit]
	}
	return whales
}

// findTokens returns the first candidate tokens with a positive supply.
func (r *Runner) findTokens(ctx context.Context) []domain.Token {
	var tokens []domain.Token
	for _, c := range r.opts.Tokens {
		if ctx.Err() != nil || len(tokens) >= r.opts.TokenLimit {
			break
		}

		if err := solana.ValidatePubkey(c.Mint); err != nil {
			r.logger.Printf("Skipping token %s: %v", c.Symbol, err)
			continue
		}

		ts, err := r.rpc.GetTokenSupply(ctx, c.Mint)
		if err != nil {
			r.logger.Printf("Supply of %s: %v", c.Symbol, err)
			continue
		}

		supply, err := ts.Supply()
		if err != nil {
			r.logger.Printf("Supply of %s: %v", c.Symbol, err)
			continue
		}
		if !supply.IsPositive() {
			continue
		}

		tokens = append(tokens, domain.Token{
			Mint:            c.Mint,
			Name:            c.Name,
			Symbol:          c.Symbol,
			Supply:          supply.InexactFloat64(),
			FormattedSupply: formatSupply(supply),
		})
	}
	return tokens
}

// formatSupply renders supply rounded to a whole number with thousands
// separators.
func formatSupply(supply decimal.Decimal) string {
	return printer.Sprintf("%d", supply.Round(0).IntPart())
}
