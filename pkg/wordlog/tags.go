package wordlog

import (
	"sort"
	"strings"
)

// CommonWordTag marks entries the dictionary flags as common.
const CommonWordTag = "common_word"

// NormalizeTag lowercases a tag and replaces spaces with underscores.
func NormalizeTag(tag string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), " ", "_")
}

// ParseTags splits comma-separated user input into normalized tags.
func ParseTags(input string) []string {
	var tags []string
	for _, part := range strings.Split(input, ",") {
		if t := NormalizeTag(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// MergeTags returns the sorted union of the given tag sets. Every tag is
// normalized and empty tags are dropped.
func MergeTags(sets ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, set := range sets {
		for _, t := range set {
			t = NormalizeTag(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// JoinTags renders a tag set the way the relational store keeps it.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// SplitTags is the inverse of JoinTags.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return MergeTags(strings.Split(s, ","))
}
