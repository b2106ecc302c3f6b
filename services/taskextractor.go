package services

import (
	"errors"
	"regexp"
	"strings"
)

// Task is one action item extracted from a meeting transcript.
type Task struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee"`
	Deadline string `json:"deadline,omitempty"`
	Priority string `json:"priority"`
}

var ErrEmptyTranscript = errors.New("transcript text cannot be empty")

var (
	taskKeywords = []string{
		"will", "should", "need to", "must", "has to", "responsible for",
		"handle", "integrate", "implement", "create", "develop",
	}
	timeKeywords = []string{
		"tomorrow", "today", "next week", "by", "before", "deadline", "due",
	}

	sentenceSplit  = regexp.MustCompile(`[.!?]+`)
	assigneeRegexp = regexp.MustCompile(`(?i)(\w+)\s+(will|should|must|has to|need to)`)
	deadlineSplit  = regexp.MustCompile(`(?i)\s+(by|before|tomorrow|today|next week)`)
)

// ExtractTasks parses a transcript into tasks with rule-based heuristics:
// sentences containing an assignment keyword become tasks, with the assignee
// taken from the word preceding the keyword and the deadline from trailing
// time phrases. A transcript with no matches yields one catch-all task.
func ExtractTasks(transcript string) ([]Task, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyTranscript
	}

	var tasks []Task
	for _, raw := range sentenceSplit.Split(transcript, -1) {
		sentence := strings.TrimSpace(raw)
		if sentence == "" {
			continue
		}

		lower := strings.ToLower(sentence)
		matched := false
		for _, keyword := range taskKeywords {
			if strings.Contains(lower, keyword) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		tasks = append(tasks, parseTask(sentence))
	}

	if len(tasks) == 0 {
		tasks = append(tasks, Task{
			Task:     truncate(strings.TrimSpace(transcript), 100),
			Assignee: "Unassigned",
			Priority: "Medium",
		})
	}

	return tasks, nil
}

func parseTask(sentence string) Task {
	assignee := "Unassigned"
	if m := assigneeRegexp.FindStringSubmatch(sentence); m != nil {
		assignee = m[1]
	}

	deadline := ""
	lower := strings.ToLower(sentence)
	for _, keyword := range timeKeywords {
		idx := strings.Index(lower, keyword)
		if idx < 0 {
			continue
		}
		phrase := sentence[idx:]
		if cut := strings.IndexAny(phrase, ",."); cut >= 0 {
			phrase = phrase[:cut]
		}
		deadline = strings.TrimSpace(phrase)
		break
	}

	description := assigneeRegexp.ReplaceAllString(sentence, "")
	if loc := deadlineSplit.FindStringIndex(description); loc != nil {
		description = description[:loc[0]]
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = truncate(sentence, 100)
	}

	return Task{
		Task:     truncate(description, 100),
		Assignee: assignee,
		Deadline: deadline,
		Priority: "Medium",
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
