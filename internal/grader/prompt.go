package grader

import (
	"fmt"
	"strings"

	"github.com/peoplebench/people-bench/internal/dataset"
	"github.com/peoplebench/people-bench/internal/searcher"
)

// systemPrompt encodes the grading rule: binary verdict, all criteria
// must hold simultaneously, synonym-aware role equivalence, no partial
// credit.
const systemPrompt = `You are evaluating if a LinkedIn profile satisfies a job role search query.
This is BINARY - score 1 if the profile matches, score 0 if it doesn't.
AUTOMATIC SCORE 0 (no exceptions):
1. Job listing pages (URLs with /jobs/, titles like "500 Jobs in NYC") → Score 0
2. Company pages (not a personal profile) → Score 0
3. If content is empty/missing and title doesn't clearly show the role → Score 0
4. Role abbreviations are job titles, NOT names:
   - "TAM" = Technical Account Manager, NOT a person named "Tam"
   - "Tax Manager" does NOT match "TAM" query
ROLE EQUIVALENCE RULES:
- Accept reasonable role variations within the SAME function:
  - "Security Engineer" ≈ "System Security Engineer" ≈ "Application Security Engineer" ✓
  - "Head of X" ≈ "Director of X" ≈ "VP of X" (leadership equivalence) ✓
  - "ML Engineer" ≈ "Machine Learning Engineer" ✓
- Do NOT accept different functions:
  - "UX Designer" ≠ "Head of UX" (IC vs leadership)
  - "Data Analyst" ≠ "Data Engineer" (different function)
  - "Project Manager" ≠ "Product Manager" (different function)
Score 1 if:
- Job function matches (with equivalences above)
- Location matches if specified (same metro area is fine)
- The person currently holds this role in this location, or if they hold this role and their primary profile is in this location
- It's a real personal LinkedIn profile
Score 0 if:
- Wrong job function
- Wrong location
- Cannot verify the role from available content
- Job listing or company page
Judge ONLY against the expectations stated in the query; do not invent additional criteria.
When genuinely uncertain about a close match, lean toward score 1 if the core job function aligns.
Respond with a JSON object: {"explanation": "<short reasoning>", "score": <0 or 1>}`

// userPrompt renders one (query, candidate) pair for the judge. The
// query's structured expectations are spelled out so the verdict is
// grounded in the dataset metadata, not the judge's reading of the
// free-form query alone.
func userPrompt(q dataset.Query, c searcher.Candidate) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Query: %s\n", q.Text)

	var expectations []string
	if q.Metadata.RoleTitle != "" {
		expectations = append(expectations, "role title: "+q.Metadata.RoleTitle)
	}
	if q.Metadata.RoleFunction != "" {
		expectations = append(expectations, "function: "+q.Metadata.RoleFunction)
	}
	if q.Metadata.RoleSeniority != "" {
		expectations = append(expectations, "seniority: "+q.Metadata.RoleSeniority)
	}
	if q.Metadata.GeoName != "" {
		geo := q.Metadata.GeoName
		if q.Metadata.GeoType != "" {
			geo += " (" + q.Metadata.GeoType + ")"
		}
		expectations = append(expectations, "location: "+geo)
	}
	if len(expectations) > 0 {
		fmt.Fprintf(&sb, "Expected: %s\n", strings.Join(expectations, ", "))
	}

	text := c.Text
	if text == "" {
		text = "(no content)"
	}
	fmt.Fprintf(&sb, "Result: URL: %s\nTitle: %s\n\n%s", c.URL, c.Title, text)

	return sb.String()
}
