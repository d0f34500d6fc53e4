// Package resume defines the résumé record consumed by the layout engine and
// the boundary checks applied before a record reaches it.
package resume

import (
	"encoding/json"
	"strings"
)

// Document is a structured résumé. JSON names follow the CV agent's output.
type Document struct {
	PersonalInfo   PersonalInfo `json:"personal_info"`
	Experience     []Experience `json:"experience"`
	Skills         Skills       `json:"skills"`
	Education      []Education  `json:"education"`
	Certifications []string     `json:"certifications"`
	Achievements   []string     `json:"achievements"`
}

// PersonalInfo holds the header fields. Only Name is required.
type PersonalInfo struct {
	Name       string `json:"name" validate:"notblank"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	ProfileURL string `json:"linkedin"`
	Summary    string `json:"summary"`
}

// Experience is one position held.
type Experience struct {
	Title            string   `json:"title"`
	Organization     string   `json:"company"`
	Location         string   `json:"location"`
	Duration         string   `json:"duration"`
	Responsibilities []string `json:"responsibilities"`
}

// Skills groups the three named skill lists.
type Skills struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
	Tools     []string `json:"tools"`
}

// Empty reports whether all three lists are empty.
func (s Skills) Empty() bool {
	return len(s.Technical) == 0 && len(s.Soft) == 0 && len(s.Tools) == 0
}

// Education is one degree or course of study.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Duration    string `json:"duration"`
	Details     string `json:"details"`
}

// Normalize returns a copy with every string trimmed and blank list items
// dropped, so that emptiness checks downstream see a canonical record.
func (d Document) Normalize() Document {
	out := Document{
		PersonalInfo: PersonalInfo{
			Name:       strings.TrimSpace(d.PersonalInfo.Name),
			Email:      strings.TrimSpace(d.PersonalInfo.Email),
			Phone:      strings.TrimSpace(d.PersonalInfo.Phone),
			Location:   strings.TrimSpace(d.PersonalInfo.Location),
			ProfileURL: strings.TrimSpace(d.PersonalInfo.ProfileURL),
			Summary:    strings.TrimSpace(d.PersonalInfo.Summary),
		},
		Skills: Skills{
			Technical: compact(d.Skills.Technical),
			Soft:      compact(d.Skills.Soft),
			Tools:     compact(d.Skills.Tools),
		},
		Certifications: compact(d.Certifications),
		Achievements:   compact(d.Achievements),
	}
	for _, exp := range d.Experience {
		out.Experience = append(out.Experience, Experience{
			Title:            strings.TrimSpace(exp.Title),
			Organization:     strings.TrimSpace(exp.Organization),
			Location:         strings.TrimSpace(exp.Location),
			Duration:         strings.TrimSpace(exp.Duration),
			Responsibilities: compact(exp.Responsibilities),
		})
	}
	for _, edu := range d.Education {
		out.Education = append(out.Education, Education{
			Degree:      strings.TrimSpace(edu.Degree),
			Institution: strings.TrimSpace(edu.Institution),
			Duration:    strings.TrimSpace(edu.Duration),
			Details:     strings.TrimSpace(edu.Details),
		})
	}
	return out
}

// Data returns the JSON-shaped view of the document (maps and slices) used
// for path interpolation.
func (d Document) Data() map[string]any {
	raw, err := json.Marshal(d)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}

func compact(items []string) []string {
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
