package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diegoholiveira/jsonlogic"
	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/actions"
	"github.com/relloyd/snowxfer/components"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/helper"
	"github.com/relloyd/snowxfer/rdbms"
	"github.com/relloyd/snowxfer/rdbms/shared"
	"github.com/relloyd/snowxfer/stats"
)

const (
	CheckMinRows       = "min_rows"
	CheckRowCountMatch = "row_count_match"
	CheckSchemaMatch   = "schema_match"
)

// Variables available to validation rules.
const (
	VarSourceRowCount    = "source_row_count"
	VarSourceColumnCount = "source_column_count"
	VarTargetRowCount    = "target_row_count"
	VarTargetColumnCount = "target_column_count"
	VarRowsTransferred   = "rows_transferred"
)

// ValidationRules are JSON Logic rules, keyed by name, that must evaluate to true.
// PreTransfer rules see source_row_count. PostTransfer rules also see source_column_count,
// target_row_count, target_column_count and rows_transferred.
// MinRows, when positive, is shorthand for a min_rows pre-transfer rule.
type ValidationRules struct {
	MinRows      int64
	PreTransfer  map[string]string
	PostTransfer map[string]string
}

type CheckResult struct {
	Name   string `json:"name"`
	Rule   string `json:"rule"`
	Passed bool   `json:"passed"`
}

type PhaseResult struct {
	Valid  bool                   `json:"valid"`
	Checks []CheckResult          `json:"checks"`
	Data   map[string]interface{} `json:"data"`
}

type ValidationResult struct {
	PreTransfer     PhaseResult         `json:"pre_transfer"`
	TransferSuccess bool                `json:"transfer_success"`
	PostTransfer    PhaseResult         `json:"post_transfer"`
	Stats           stats.TransferStats `json:"stats"`
}

// TransferWithValidation checks the source before the transfer and the Snowflake table after it.
// The transfer is skipped when a pre-transfer rule fails. Built in post-transfer checks compare
// row and column counts of the source and destination.
func TransferWithValidation(ctx context.Context, queryOrTable string, rules ValidationRules, opts ...Option) (ValidationResult, error) {
	retval := ValidationResult{}
	o := newOptions(opts)
	o.progress("Starting validated transfer\n")
	p, err := o.plan(queryOrTable)
	if err != nil {
		return retval, err
	}
	t := o.newDataTransfer(p.settings)
	defer t.Cleanup()
	if err = t.SetupConnections(ctx); err != nil {
		return retval, err
	}
	src := p.sourceExpr()
	connType := p.settings.DatabaseType.String()
	// Pre-transfer.
	srcRows, err := rdbms.QueryInt64(ctx, t.Source(), actions.CountQuery(connType, src))
	if err != nil {
		return retval, errors.Wrap(err, "unable to count source rows")
	}
	pre := rules.PreTransfer
	if rules.MinRows > 0 {
		pre = withRule(pre, CheckMinRows, fmt.Sprintf(`{">=": [{"var": %q}, %d]}`, VarSourceRowCount, rules.MinRows))
	}
	retval.PreTransfer, err = evaluate(pre, map[string]interface{}{VarSourceRowCount: srcRows})
	if err != nil {
		return retval, err
	}
	if !retval.PreTransfer.Valid {
		o.progress("Pre-transfer validation failed\n")
		return retval, nil
	}
	// Transfer.
	if err = t.TransferTable(ctx, p.query, p.limit); err != nil {
		retval.Stats = t.Stats()
		return retval, err
	}
	retval.TransferSuccess = true
	retval.Stats = t.Stats()
	if o.showProgress {
		t.PrintSummary()
	}
	// Post-transfer.
	srcCols, err := columnCount(ctx, t.Source(), components.SchemaDetectionQuery(connType, src))
	if err != nil {
		return retval, err
	}
	dest, err := helper.ValidateTableName(p.settings.Transfer.DestinationTable)
	if err != nil {
		return retval, err
	}
	info, err := rdbms.SnowflakeGetTableInfo(ctx, o.log, t.Target(), dest)
	if err != nil {
		return retval, err
	}
	rowCmp := "=="
	if p.settings.Transfer.Mode == constants.TransferModeAppend {
		rowCmp = ">="
	}
	post := withRule(rules.PostTransfer, CheckRowCountMatch, fmt.Sprintf(`{%q: [{"var": %q}, {"var": %q}]}`, rowCmp, VarTargetRowCount, VarSourceRowCount))
	post = withRule(post, CheckSchemaMatch, fmt.Sprintf(`{"==": [{"var": %q}, {"var": %q}]}`, VarTargetColumnCount, VarSourceColumnCount))
	retval.PostTransfer, err = evaluate(post, map[string]interface{}{
		VarSourceRowCount:    srcRows,
		VarSourceColumnCount: srcCols,
		VarTargetRowCount:    info.RowCount,
		VarTargetColumnCount: info.ColumnCount,
		VarRowsTransferred:   retval.Stats.RowsTransferred,
	})
	if err != nil {
		return retval, err
	}
	if !retval.PostTransfer.Valid {
		o.progress("Post-transfer validation failed\n")
	}
	return retval, nil
}

func columnCount(ctx context.Context, db shared.Connector, sqltext string) (int, error) {
	rows, err := db.QueryContext(ctx, sqltext)
	if err != nil {
		return 0, errors.Wrap(err, "unable to read source columns")
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return 0, errors.Wrap(err, "unable to read source columns")
	}
	return len(cols), nil
}

// withRule returns a copy of rules plus name, unless rules already define name.
func withRule(rules map[string]string, name string, rule string) map[string]string {
	retval := make(map[string]string, len(rules)+1)
	for k, v := range rules {
		retval[k] = v
	}
	if _, ok := retval[name]; !ok {
		retval[name] = rule
	}
	return retval
}

// evaluate applies each rule to data. Checks are returned in name order.
func evaluate(rules map[string]string, data map[string]interface{}) (PhaseResult, error) {
	retval := PhaseResult{Valid: true, Data: data}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return retval, errors.Wrap(err, "error marshalling data before applying JSON logic")
	}
	for _, name := range sortedKeys(rules) {
		rule := rules[name]
		if !jsonlogic.IsValid(strings.NewReader(rule)) {
			return retval, fmt.Errorf("invalid validation rule %v: %v", name, rule)
		}
		var result bytes.Buffer
		if err = jsonlogic.Apply(strings.NewReader(rule), bytes.NewReader(jsonData), &result); err != nil {
			return retval, errors.Wrapf(err, "error applying validation rule %v", name)
		}
		passed := strings.TrimSpace(result.String()) == "true"
		retval.Checks = append(retval.Checks, CheckResult{Name: name, Rule: rule, Passed: passed})
		if !passed {
			retval.Valid = false
		}
	}
	return retval, nil
}
