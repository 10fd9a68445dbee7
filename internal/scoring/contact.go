package scoring

// ContactInput carries the aggregate attributes the contact rubric consumes.
type ContactInput struct {
	RegistrySearchedCount int
	RegistryFoundCount    int
	TrackCount            int
	TracksWithoutPublisher int
	TracksWithoutWriter    int
	SelfWrittenTracks      int
	AnyEditorialPlaylist   bool
	AvgWowGrowthPct        float64
}

// CalculateContactScore maps an aggregated songwriter's attributes to a 0-10
// publishing opportunity score.
//
//	+6 registry searched and found nothing
//	+3 over half of linked tracks lack a publisher
//	+2 over half lack writer metadata
//	+2 over half self-written with an editorial playlist presence, else +1
//	   over half self-written
//	+2 aggregate growth above 50%, else +1 above 20%
func CalculateContactScore(in ContactInput) int {
	score := 0

	if in.RegistrySearchedCount > 0 && in.RegistryFoundCount == 0 {
		score += 6
	}
	if overHalf(in.TracksWithoutPublisher, in.TrackCount) {
		score += 3
	}
	if overHalf(in.TracksWithoutWriter, in.TrackCount) {
		score += 2
	}
	if overHalf(in.SelfWrittenTracks, in.TrackCount) {
		if in.AnyEditorialPlaylist {
			score += 2
		} else {
			score += 1
		}
	}
	score += growthBonus(in.AvgWowGrowthPct)

	return clamp(score)
}

// HotLead flags contacts whose aggregate score clears the outreach threshold.
func HotLead(score int) bool {
	return score >= 8
}

func overHalf(count, total int) bool {
	if total <= 0 {
		return false
	}
	return count*2 > total
}
