package pipeline

import "github.com/mavenizer/mavenizer/internal/model"

// AutoSelect implements the auto-selection rule: it succeeds only if
// exactly one online result across the whole set has match type
// EXACT_SHA. Any other outcome - zero, multiple, or only weaker matches -
// falls through to manual selection, since EXACT_SHA is the only match
// type strong enough to require no human judgment.
func AutoSelect(online []model.UidCheck) (model.UidCheck, bool) {
	var winner model.UidCheck
	count := 0
	for _, check := range online {
		if check.Match == model.ExactSHA {
			winner = check
			count++
		}
	}
	if count == 1 {
		return winner, true
	}
	return model.UidCheck{}, false
}
