// Package awsregion holds the fixed region list the TUI cycles through with the
// digit keys 0-5, and the global-service pinning rule.
package awsregion

// QuickSwitchRegions is the fixed list digits 0-5 map to in the TUI.
var QuickSwitchRegions = []string{
	"us-east-1",
	"us-west-2",
	"eu-west-1",
	"eu-central-1",
	"ap-southeast-1",
	"ap-northeast-1",
}

// GlobalSigningRegion is the region every global service is pinned to for both
// endpoint construction and SigV4 credential scope, regardless of the user's selected
// region.
const GlobalSigningRegion = "us-east-1"

// ByDigit resolves a '0'..'5' keystroke to a region code, or ("", false) if out of range.
func ByDigit(digit byte) (string, bool) {
	if digit < '0' || int(digit-'0') >= len(QuickSwitchRegions) {
		return "", false
	}
	return QuickSwitchRegions[digit-'0'], true
}

// EffectiveRegion returns the region a request should actually be sent/signed for,
// accounting for global-service pinning.
func EffectiveRegion(userRegion string, isGlobal bool) string {
	if isGlobal {
		return GlobalSigningRegion
	}
	return userRegion
}
