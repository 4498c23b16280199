package reconcile

import (
	"fmt"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

// Template is a sample input file for one dataset of a policy.
type Template struct {
	Dataset  string
	FileName string
	Header   []string
	Rows     [][]string
}

var (
	fullSubmissionTemplate = Template{
		Dataset:  DatasetSubmission,
		FileName: "submission_template.csv",
		Header:   []string{"Month", "Invoice", "Member ID", "Transaction Date", "Amount"},
		Rows: [][]string{
			{"2025-01", "INV001", "12345", "22-10-2025", "1000"},
			{"2025-02", "INV002", "56789", "23-10-2025", "2000"},
			{"2025-03", "INV003", "11111", "24-10-2025", "1500"},
		},
	}
	fullRemittanceTemplate = Template{
		Dataset:  DatasetRemittance,
		FileName: "remittance_template.csv",
		Header:   []string{"Invoice", "Payment Reference", "Settlement Date", "Amount"},
		Rows: [][]string{
			{"INV001", "REF001", "24-10-2025", "800"},
			{"INV002", "REF002", "25-10-2025", "2000"},
		},
	}
	balancedSubmissionTemplate = Template{
		Dataset:  DatasetSubmission,
		FileName: "submission_template.csv",
		Header:   []string{"Invoice", "Member ID", "Amount", "Month"},
		Rows: [][]string{
			{"INV001", "12345", "1000", "Jan"},
			{"INV002", "56789", "2000", "Feb"},
			{"INV003", "11111", "1500", "Mar"},
		},
	}
	balancedRemittanceTemplate = Template{
		Dataset:  DatasetRemittance,
		FileName: "remittance_template.csv",
		Header:   []string{"Invoice", "Transaction Date", "Amount"},
		Rows: [][]string{
			{"INV001", "24-10-2025", "800"},
			{"INV002", "25-10-2025", "2000"},
		},
	}
)

func (t Template) clone() Template {
	t.Header = append([]string(nil), t.Header...)
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string(nil), row...)
	}
	t.Rows = rows
	return t
}

// Templates returns copies of the submission and remittance templates of
// a policy; callers may modify them freely.
func Templates(policy domain.Policy) ([]Template, error) {
	switch policy {
	case domain.PolicyPlain, domain.PolicyPendingAware:
		return []Template{fullSubmissionTemplate.clone(), fullRemittanceTemplate.clone()}, nil
	case domain.PolicyBalanced:
		return []Template{balancedSubmissionTemplate.clone(), balancedRemittanceTemplate.clone()}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
}

// TemplateFor returns one dataset's template of a policy.
func TemplateFor(policy domain.Policy, dataset string) (Template, error) {
	templates, err := Templates(policy)
	if err != nil {
		return Template{}, err
	}
	for _, t := range templates {
		if t.Dataset == dataset {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("unknown dataset %q: expected %s or %s", dataset, DatasetSubmission, DatasetRemittance)
}
