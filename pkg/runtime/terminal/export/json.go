package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/de-tools/invoice-reconciler/pkg/adapters"
	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

const FormatJSON = "json"

type JSONSink struct {
	Indent string
}

func (JSONSink) Format() string      { return FormatJSON }
func (JSONSink) Extension() string   { return ".json" }
func (JSONSink) ContentType() string { return "application/json" }

func (s JSONSink) Write(_ context.Context, w io.Writer, report *domain.Report) error {
	enc := json.NewEncoder(w)
	if s.Indent != "" {
		enc.SetIndent("", s.Indent)
	}
	if err := enc.Encode(adapters.MapReportDomainToApi(report)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
