// Package fixtures provides reusable test data generators. Classifier and
// extraction tests need post bodies of controlled length and relevance
// without duplicating paragraphs of sample text in every suite.
package fixtures

import (
	"strings"
)

// PostOptions configures the generated post body.
type PostOptions struct {
	// Length is the approximate character count (target length, ±10% variance allowed)
	Length int

	// Relevant controls whether the body mentions Ontario condo topics.
	// When false the body reads like an off-topic discussion post.
	Relevant bool
}

// GeneratePost generates post body content based on the provided options.
//
// Example:
//
//	body := GeneratePost(PostOptions{
//	    Length:   2000,
//	    Relevant: true,
//	})
func GeneratePost(opts PostOptions) string {
	if opts.Relevant {
		return buildBody(relevantSentences, opts.Length)
	}
	return buildBody(offTopicSentences, opts.Length)
}

// GenerateShortPost generates a short relevant post body (~500 characters).
func GenerateShortPost() string {
	return GeneratePost(PostOptions{Length: 500, Relevant: true})
}

// GenerateLongPost generates a long relevant post body (~10000 characters).
// Useful for exercising classification and extraction over extensive content.
func GenerateLongPost() string {
	return GeneratePost(PostOptions{Length: 10000, Relevant: true})
}

// GenerateOffTopicPost generates a post body with no condo-related content.
func GenerateOffTopicPost() string {
	return GeneratePost(PostOptions{Length: 2000, Relevant: false})
}

var relevantSentences = []string{
	"Our Toronto condo board just received the latest reserve fund study and the recommended contributions nearly doubled.",
	"The property management company sent a notice about a special assessment to cover the garage membrane repairs.",
	"Maintenance fees in our Ontario building went up twelve percent this year, mostly driven by insurance premiums.",
	"The status certificate showed two open Condominium Authority Tribunal cases against the corporation.",
	"Owners at the annual general meeting voted down the proposal to borrow against future reserve contributions.",
	"The engineer's report flagged the cooling tower and the elevator modernization as the two largest upcoming expenses.",
	"Several units on the lower floors reported water damage after the standpipe failure last month.",
	"The board is reviewing quotes for the window wall replacement, which the reserve fund study pushed up by five years.",
	"Our condominium corporation filed a claim against the declarant over first-year budget shortfalls.",
	"The auditor noted that the operating surplus was transferred to the reserve fund as required by the bylaws.",
}

var offTopicSentences = []string{
	"The new season of the show picks up right where the finale left off and the pacing is much better.",
	"I switched to a standing desk last year and honestly my back has never felt better.",
	"The farmers market on Saturdays has the best sourdough in the city, get there before nine.",
	"We drove up north for the long weekend and the fall colours were already past peak.",
	"My sourdough starter died while I was on vacation so I am starting over from scratch.",
	"The trail along the river is finally open again after the spring flooding repairs.",
	"Anyone have recommendations for a good mechanic that does not overcharge for brake work?",
	"The library added a seed exchange program and the tomato varieties this year are excellent.",
	"I finally finished the puzzle that has been sitting on the dining table since January.",
	"The community hockey league is taking registrations until the end of the month.",
}

// buildBody cycles through sentences until the target length is reached,
// staying within ±10% of the target.
func buildBody(sentences []string, targetLength int) string {
	var builder strings.Builder
	currentLength := 0
	sentenceIndex := 0

	for {
		sentence := sentences[sentenceIndex%len(sentences)]
		sentenceIndex++

		sentenceLength := len([]rune(sentence))
		if currentLength > 0 {
			sentenceLength++ // Account for space
		}
		potentialLength := currentLength + sentenceLength

		if currentLength >= int(float64(targetLength)*0.9) {
			if potentialLength > int(float64(targetLength)*1.1) {
				break
			}
		}

		if currentLength > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(sentence)
		currentLength = len([]rune(builder.String()))

		if currentLength >= targetLength {
			break
		}
	}

	return builder.String()
}
