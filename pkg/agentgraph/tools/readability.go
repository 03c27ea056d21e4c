package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/tool"
)

// readabilityArgs is the argument shape for check_readability.
type readabilityArgs struct {
	Content string `json:"content"`
	Options struct {
		Metrics        []string `json:"metrics"`
		TargetAudience string   `json:"target_audience"`
	} `json:"options"`
}

// readabilityResult is the JSON document returned by check_readability.
type readabilityResult struct {
	ReadabilityScores     map[string]float64 `json:"readability_scores"`
	AudienceMatch         *bool              `json:"audience_match"`
	WordCount             int                `json:"word_count"`
	SentenceCount         int                `json:"sentence_count"`
	AverageSentenceLength float64            `json:"average_sentence_length"`
	ComplexWordPercentage float64            `json:"complex_word_percentage"`
	EstimatedReadingTime  string             `json:"estimated_reading_time,omitempty"`
	Suggestions           []string           `json:"suggestions"`
}

// audienceGradeRanges maps audience names to acceptable grade ranges.
var audienceGradeRanges = map[string][2]float64{
	"elementary":    {1, 5},
	"middle_school": {6, 8},
	"high_school":   {9, 12},
	"college":       {13, 16},
	"graduate":      {17, 18},
	"general":       {7, 10},
}

// NewReadabilityChecker returns the check_readability tool. It scores
// content with standard readability formulas and judges fit against a
// target audience.
func NewReadabilityChecker() tool.Tool {
	return tool.New("check_readability",
		"Analyze text readability with standard metrics and judge audience fit. "+
			"Arguments: {content, options:{metrics, target_audience}}.",
		runReadabilityCheck)
}

func runReadabilityCheck(_ context.Context, args json.RawMessage) (string, error) {
	var in readabilityArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("check_readability: decode arguments: %w", err)
	}

	metrics := in.Options.Metrics
	if len(metrics) == 0 {
		metrics = []string{"flesch_kincaid", "smog", "coleman_liau"}
	}
	audience := in.Options.TargetAudience
	if audience == "" {
		audience = "general"
	}

	sentences := sentenceSplit(in.Content)
	if len(sentences) < 3 {
		out, err := json.Marshal(readabilityResult{
			ReadabilityScores: map[string]float64{},
			SentenceCount:     len(sentences),
			Suggestions:       []string{"Text is too short for meaningful readability analysis"},
		})
		if err != nil {
			return "", fmt.Errorf("check_readability: encode result: %w", err)
		}
		return string(out), nil
	}

	wordCount := 0
	letterCount := 0
	syllableCount := 0
	complexWords := 0
	for _, s := range sentences {
		for _, w := range words(s) {
			wordCount++
			letterCount += len(w)
			n := countSyllables(w)
			syllableCount += n
			if n >= 3 {
				complexWords++
			}
		}
	}

	avgSentenceLength := float64(wordCount) / float64(len(sentences))
	avgSyllables := float64(syllableCount) / float64(wordCount)

	scores := make(map[string]float64)
	for _, m := range metrics {
		switch m {
		case "flesch_kincaid":
			grade := clamp(0.39*avgSentenceLength+11.8*avgSyllables-15.59, 0, 18)
			scores["flesch_kincaid_grade"] = round1(grade)
		case "flesch_reading_ease":
			ease := clamp(206.835-1.015*avgSentenceLength-84.6*avgSyllables, 0, 100)
			scores["flesch_reading_ease"] = round1(ease)
		case "smog":
			// SMOG needs at least 30 sentences to be meaningful.
			if len(sentences) >= 30 {
				smog := 1.043*math.Sqrt(float64(complexWords)*(30/float64(len(sentences)))) + 3.1291
				scores["smog_index"] = round1(smog)
			}
		case "coleman_liau":
			l := float64(letterCount) / float64(wordCount) * 100
			s := float64(len(sentences)) / float64(wordCount) * 100
			scores["coleman_liau_index"] = round1(0.0588*l - 0.296*s - 15.8)
		}
	}

	var match *bool
	var suggestions []string
	if grade, ok := scores["flesch_kincaid_grade"]; ok {
		bounds, known := audienceGradeRanges[audience]
		if !known {
			bounds = audienceGradeRanges["general"]
		}
		switch {
		case grade < bounds[0]:
			match = boolPtr(false)
			suggestions = append(suggestions,
				fmt.Sprintf("Text may be too simple for %s audience (grade level: %.1f).", audience, grade),
				"Consider using more precise terminology and slightly longer sentences.")
		case grade > bounds[1]:
			match = boolPtr(false)
			suggestions = append(suggestions,
				fmt.Sprintf("Text may be too complex for %s audience (grade level: %.1f).", audience, grade),
				"Consider using shorter sentences and simpler vocabulary.")
		default:
			match = boolPtr(true)
			suggestions = append(suggestions,
				fmt.Sprintf("Text complexity appears appropriate for %s audience.", audience))
		}
	}

	const readingSpeedWPM = 250
	readingTime := float64(wordCount) / readingSpeedWPM
	minutes := int(readingTime)
	seconds := int((readingTime - float64(minutes)) * 60)

	result := readabilityResult{
		ReadabilityScores:     scores,
		AudienceMatch:         match,
		WordCount:             wordCount,
		SentenceCount:         len(sentences),
		AverageSentenceLength: round1(avgSentenceLength),
		ComplexWordPercentage: round1(float64(complexWords) / float64(wordCount) * 100),
		EstimatedReadingTime:  fmt.Sprintf("%dm %ds", minutes, seconds),
		Suggestions:           suggestions,
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("check_readability: encode result: %w", err)
	}
	return string(out), nil
}

func boolPtr(b bool) *bool { return &b }
