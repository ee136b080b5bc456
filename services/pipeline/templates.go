// File: services/pipeline/templates.go
package pipeline

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"frontdesk/models"

	"gopkg.in/yaml.v3"
)

// TemplateSet holds every canned text the composer and closer can fall back
// to. Built-in defaults may be overridden per key from a YAML file.
type TemplateSet struct {
	Questions       map[string][]string `yaml:"questions"`
	GenericQuestion string              `yaml:"generic_question"`
	ClosingOpenings map[string][]string `yaml:"closing_openings"`
	Confirmations   map[string][]string `yaml:"confirmations"`
}

const (
	openingStandard          = "standard"
	openingNeedsConfirmation = "needs_confirmation"
	confirmationStandard     = "standard"
	confirmationWithFollowup = "with_followup"
)

// DefaultTemplateSet returns the built-in template tables: one variant list
// per affinity pair and per single slot, plus the closing families.
func DefaultTemplateSet() *TemplateSet {
	return &TemplateSet{
		Questions: map[string][]string{
			TemplateKey([]string{models.SlotName, models.SlotPhone}): {
				"May I have your name and phone number, please?",
				"Could you tell me your name and the best number to reach you?",
				"Who am I booking for, and what's a good phone number?",
			},
			TemplateKey([]string{models.SlotDay, models.SlotTime}): {
				"What day and time would work best for you?",
				"When would you like to come in? Any day and time in mind?",
				"Which day suits you, and what time would you prefer?",
			},
			TemplateKey([]string{models.SlotService, models.SlotTime}): {
				"What service would you like, and what time works for you?",
				"Which service are you after, and when would you like to come in?",
				"What are we booking for you, and what time suits you?",
			},
			TemplateKey([]string{models.SlotService, models.SlotDay}): {
				"What service would you like, and what day works for you?",
				"Which service are you after, and which day suits you?",
				"What are we booking, and what day would you like to come in?",
			},
			models.SlotName: {
				"May I have your name, please?",
				"Could you tell me your name?",
				"Who do I have the pleasure of booking for?",
			},
			models.SlotPhone: {
				"What's your phone number?",
				"What's the best number to reach you?",
				"Could I get a phone number for the booking?",
			},
			models.SlotDay: {
				"What day works for you?",
				"Which day would you like to come in?",
				"What day should I put you down for?",
			},
			models.SlotTime: {
				"What time would you prefer?",
				"What time works best for you?",
				"Is there a time of day that suits you?",
			},
			models.SlotService: {
				"What service would you like?",
				"Which service are you booking today?",
				"What can we do for you this visit?",
			},
		},
		GenericQuestion: "Could you please provide some additional information?",
		ClosingOpenings: map[string][]string{
			openingStandard: {
				"Perfect! I have all the information I need. Let me confirm your appointment:",
				"Excellent! I've got everything we need to schedule your appointment:",
				"Great! Here's a summary of your appointment request:",
			},
			openingNeedsConfirmation: {
				"Thanks! I have your details. Let me just double-check the timing with you:",
				"Almost there! Here's what I have so far for your appointment:",
				"Wonderful! I've noted your request. We'll lock in the exact time shortly:",
			},
		},
		Confirmations: map[string][]string{
			confirmationStandard: {
				"Your appointment has been confirmed! You'll receive a confirmation text shortly.",
				"You're all booked! A confirmation text is on its way.",
				"Everything is confirmed. We'll see you then!",
			},
			confirmationWithFollowup: {
				"We'll call you shortly to confirm the exact time.",
				"Our team will reach out to pin down the final time.",
				"Expect a quick call from us to settle the timing.",
			},
		},
	}
}

// LoadTemplateSet reads overrides from a YAML file and merges them over the
// defaults. Keys absent from the file keep their built-in variants.
func LoadTemplateSet(path string) (*TemplateSet, error) {
	base := DefaultTemplateSet()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template file: %w", err)
	}
	var overrides TemplateSet
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing template file: %w", err)
	}

	for key, variants := range overrides.Questions {
		if len(variants) > 0 {
			base.Questions[key] = variants
		}
	}
	if overrides.GenericQuestion != "" {
		base.GenericQuestion = overrides.GenericQuestion
	}
	for family, variants := range overrides.ClosingOpenings {
		if len(variants) > 0 {
			base.ClosingOpenings[family] = variants
		}
	}
	for family, variants := range overrides.Confirmations {
		if len(variants) > 0 {
			base.Confirmations[family] = variants
		}
	}
	return base, nil
}

// TemplateKey builds the lookup key for a slot group: the slots sorted and
// joined with "+".
func TemplateKey(slots []string) string {
	sorted := append([]string(nil), slots...)
	sort.Strings(sorted)
	return strings.Join(sorted, "+")
}
