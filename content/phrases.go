package content

import (
	"fmt"
	"strings"
)

// Phrase categories
const (
	CategorySoft       = "soft"
	CategoryInvestment = "investment"
	CategoryYield      = "yield"
	CategoryReferral   = "referral"
)

type category struct {
	name    string
	weight  int
	warning string
	phrases []string
}

// categories are matched case-insensitively as plain substrings. Every
// matching phrase adds the category weight.
var categories = []category{
	{
		name:    CategorySoft,
		weight:  5,
		warning: "Phishing-style wording on page: %s.",
		phrases: []string{
			"giveaway",
			"airdrop",
			"connect wallet",
			"claim reward",
			"validate wallet",
			"synchronize",
			"official promotion",
			"support team",
		},
	},
	{
		name:    CategoryInvestment,
		weight:  15,
		warning: "Investment-platform language on page: %s.",
		phrases: []string{
			"investment platform",
			"trading platform",
			"trading bot",
			"forex",
			"forex trading",
			"copy trading",
			"signal group",
			"crypto investment",
			"investment plan",
			"investment package",
		},
	},
	{
		name:    CategoryYield,
		weight:  20,
		warning: "Promises of guaranteed or fixed returns: %s.",
		phrases: []string{
			"passive income",
			"stable income",
			"guaranteed",
			"guaranteed profit",
			"fixed income",
			"fixed return",
			"daily profit",
			"monthly profit",
			"% per day",
			"% daily",
			"per day roi",
			"return on investment",
			"high roi",
			"double your money",
			"2x your",
			"3x your",
		},
	},
	{
		name:    CategoryReferral,
		weight:  15,
		warning: "Referral or MLM scheme language: %s.",
		phrases: []string{
			"referral program",
			"affiliate program",
			"multi level marketing",
			"multi-level marketing",
			"mlm",
			"invite friends and earn",
		},
	},
}

// Score floors applied after the per-hit sum.
const (
	floorInvestmentYield         = 60
	floorInvestmentYieldReferral = 70
	floorContractInvestmentYield = 80
	walletBonus                  = 5
	maxContentScore              = 80
)

// Flags records which score-relevant categories matched.
type Flags struct {
	HasInvestmentBuzz bool `json:"hasInvestmentBuzz"`
	HasYieldPromise   bool `json:"hasYieldPromise"`
	HasReferral       bool `json:"hasReferral"`
}

// TextScore is the phrase-only part of a content evaluation.
type TextScore struct {
	Score    int
	Matches  []string
	Flags    Flags
	Warnings []string
}

// ScoreText scores text against the phrase categories and applies the
// co-occurrence floors. The result is clamped to 80.
func ScoreText(text string) TextScore {
	lower := strings.ToLower(text)
	res := TextScore{Matches: []string{}, Warnings: []string{}}
	seen := map[string]bool{}

	for _, c := range categories {
		var hits []string
		for _, p := range c.phrases {
			if !strings.Contains(lower, p) {
				continue
			}
			hits = append(hits, p)
			res.Score += c.weight
			if !seen[p] {
				seen[p] = true
				res.Matches = append(res.Matches, p)
			}
		}
		if len(hits) == 0 {
			continue
		}
		switch c.name {
		case CategoryInvestment:
			res.Flags.HasInvestmentBuzz = true
		case CategoryYield:
			res.Flags.HasYieldPromise = true
		case CategoryReferral:
			res.Flags.HasReferral = true
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf(c.warning, quoteJoin(hits)))
	}

	if res.Flags.HasInvestmentBuzz && res.Flags.HasYieldPromise {
		res.Score = max(res.Score, floorInvestmentYield)
		if res.Flags.HasReferral {
			res.Score = max(res.Score, floorInvestmentYieldReferral)
		}
	}
	res.Score = min(res.Score, maxContentScore)
	return res
}

func quoteJoin(phrases []string) string {
	q := make([]string, len(phrases))
	for i, p := range phrases {
		q[i] = `"` + p + `"`
	}
	return strings.Join(q, ", ")
}
