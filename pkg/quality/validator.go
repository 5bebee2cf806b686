package quality

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"

	"github.com/acervo-legal/acervo/pkg/archive"
	"github.com/acervo-legal/acervo/pkg/legaldoc"
)

// SchemaValidator reports whether a serialized document is structurally
// valid. Findings are returned as data, never raised as errors.
type SchemaValidator interface {
	ValidateDocument(doc *archive.Document) (bool, []string)
}

// Issue is one completeness finding. Type is a stable category key;
// distinct types drive the completeness penalty.
type Issue struct {
	Type        string
	Description string
}

// CompletenessChecker reports completeness findings for a set of
// structural counts.
type CompletenessChecker interface {
	Check(counts legaldoc.Counts, expectedArticles int) []Issue
}

// StructuralValidator is the default SchemaValidator: identity URIs and
// slug are required, the body must be non-empty, and every article node
// needs an identifier.
type StructuralValidator struct{}

// ValidateDocument implements SchemaValidator.
func (StructuralValidator) ValidateDocument(doc *archive.Document) (bool, []string) {
	var result *multierror.Error

	id := doc.Identification
	if err := validation.ValidateStruct(&id,
		validation.Field(&id.DocumentType, validation.Required),
		validation.Field(&id.Slug, validation.Required),
		validation.Field(&id.PublicationDate, validation.Required),
	); err != nil {
		result = multierror.Append(result, fmt.Errorf("identification: %w", err))
	}
	if err := validation.ValidateStruct(&id.Identity,
		validation.Field(&id.Identity.Work, validation.Required),
		validation.Field(&id.Identity.Expression, validation.Required),
		validation.Field(&id.Identity.Manifestation, validation.Required),
	); err != nil {
		result = multierror.Append(result, fmt.Errorf("identity: %w", err))
	}

	if len(doc.Body.Elements) == 0 {
		result = multierror.Append(result, fmt.Errorf("body is empty"))
	}
	validateNodes(doc.Body.Elements, &result)

	if result == nil {
		return true, nil
	}
	issues := make([]string, 0, len(result.Errors))
	for _, err := range result.Errors {
		issues = append(issues, err.Error())
	}
	return false, issues
}

func validateNodes(nodes []archive.BodyNode, result **multierror.Error) {
	for i := range nodes {
		n := &nodes[i]
		if n.ID == "" {
			*result = multierror.Append(*result, fmt.Errorf(
				"%s node without identifier", n.Type))
		}
		validateNodes(n.Children, result)
	}
}

// Completeness issue type keys.
const (
	IssueNoArticles    = "no_articles"
	IssueNoStructure   = "no_structure"
	IssueNoTransitory  = "no_transitory"
	IssueBelowExpected = "below_expected"
)

// CountsChecker is the default CompletenessChecker, driven purely by
// structural counts and the optional expected-article count.
type CountsChecker struct{}

// Check implements CompletenessChecker.
func (CountsChecker) Check(counts legaldoc.Counts, expectedArticles int) []Issue {
	var issues []Issue
	if counts.Articles == 0 {
		issues = append(issues, Issue{
			Type:        IssueNoArticles,
			Description: "no articles extracted",
		})
	}
	if counts.Chapters == 0 && counts.Titles == 0 {
		issues = append(issues, Issue{
			Type:        IssueNoStructure,
			Description: "no chapter or title structure found",
		})
	}
	if counts.Transitories == 0 {
		issues = append(issues, Issue{
			Type:        IssueNoTransitory,
			Description: "no transitory articles found",
		})
	}
	if expectedArticles > 0 && counts.Articles < expectedArticles {
		issues = append(issues, Issue{
			Type: IssueBelowExpected,
			Description: fmt.Sprintf("found %d of %d expected articles",
				counts.Articles, expectedArticles),
		})
	}
	return issues
}
