package matching

import (
	"github.com/ewilliams-labs/resonance/internal/core/domain"
	"github.com/ewilliams-labs/resonance/internal/core/ports"
)

const (
	minTitleSimilarity   = 0.65
	minArtistSimilarity  = 0.55
	minOverallSimilarity = 0.70
)

// Score rates how well candidate matches the requested title and artist.
// With an empty artist only the title is compared. The boolean reports
// whether every threshold was met.
func Score(title string, artist string, candidate domain.Track) (float64, bool) {
	normalizedTitle := Normalize(title)
	candidateTitle := Normalize(candidate.Name)
	if normalizedTitle == "" || candidateTitle == "" {
		return 0, false
	}
	titleSim := similarity(normalizedTitle, candidateTitle)

	normalizedArtist := Normalize(artist)
	if normalizedArtist == "" {
		return titleSim, titleSim >= minOverallSimilarity
	}

	candidateArtist := Normalize(candidate.Artist)
	if candidateArtist == "" {
		return 0, false
	}
	artistSim := similarity(normalizedArtist, candidateArtist)
	score := 0.7*titleSim + 0.3*artistSim

	if titleSim < minTitleSimilarity || artistSim < minArtistSimilarity || score < minOverallSimilarity {
		return score, false
	}

	return score, true
}

// Resolve returns the best-scoring track that passes every threshold. Ties
// go to the earlier track. When nothing qualifies the error matches
// ports.ErrNoConfidentMatch.
func Resolve(tracks []domain.Track, title string, artist string) (domain.Track, float64, error) {
	bestScore := 0.0
	bestIndex := -1
	for i, candidate := range tracks {
		score, ok := Score(title, artist, candidate)
		if ok && score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	if bestIndex == -1 {
		return domain.Track{}, 0, &ports.NoConfidentMatchError{Title: title, Artist: artist}
	}

	return tracks[bestIndex], bestScore, nil
}

func similarity(a string, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshteinDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

func levenshteinDistance(a string, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		copy(prev, curr)
	}

	return prev[len(rb)]
}
