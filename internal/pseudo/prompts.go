package pseudo

import (
	"fmt"
	"strings"
)

const generationSystemPrompt = `You are an event planner who designs social events for groups of people based on their shared interests. You write concise, concrete event concepts that real people would attend.`

const venueSystemPrompt = `You map event concepts to the kind of venue they need. Answer with short venue-type search queries only, one per line.`

func buildGenerationPrompt(interests []string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A group of people share these interests:\n\n")
	for i, summary := range interests {
		fmt.Fprintf(&b, "Person %d: %s\n", i+1, summary)
	}
	fmt.Fprintf(&b, "\nPropose %d diverse event concepts that would appeal to the whole group.\n", count)
	b.WriteString("Format each as a numbered line: \"Title - Description\". Keep each description to one or two sentences.")
	return b.String()
}

func buildVenuePrompt(descriptions []string) string {
	var b strings.Builder
	b.WriteString("For each event below, give the type of venue to search for (like \"climbing gym\", \"coffee shop\", \"public park\").\n\n")
	for i, description := range descriptions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, description)
	}
	b.WriteString("\nAnswer with one numbered venue type per line, nothing else.")
	return b.String()
}
