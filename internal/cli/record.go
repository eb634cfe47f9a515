package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

// fieldWidth — ширина значения в таблице записи.
const fieldWidth = 80

// NewJobCmd создаёт группу команд для вакансий.
func NewJobCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return newRecordCmd("job", "Enrich and manage job postings", ResourceJobs, clientFn, outputFn)
}

// NewCandidateCmd создаёт группу команд для кандидатов.
func NewCandidateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return newRecordCmd("candidate", "Enrich and manage candidates", ResourceCandidates, clientFn, outputFn)
}

func newRecordCmd(use, short, resource string, clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.AddCommand(
		newEnrichCmd(resource, clientFn, outputFn),
		newGetCmd(resource, clientFn, outputFn),
		newPutCmd(resource, clientFn, outputFn),
	)

	return cmd
}

func newEnrichCmd(resource string, clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var async bool

	cmd := &cobra.Command{
		Use:   "enrich ID",
		Short: "Run the enrichment pipeline for a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if async {
				accepted, err := client.EnrichAsync(resource, args[0])
				if err != nil {
					return err
				}
				out.Success(fmt.Sprintf("Enrichment queued: %s", accepted.RequestID))
				out.Print(
					[]string{"REQUEST_ID", "PIPELINE", "ID"},
					[][]string{{accepted.RequestID, accepted.Pipeline, accepted.ID}},
					accepted,
				)
				return nil
			}

			res, err := client.Enrich(resource, args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run %s: %s (updated=%t, %dms)", res.RunID, res.Status, res.Updated, res.DurationMs))
			out.Print([]string{"OPERATION", "STATUS", "DETAIL"}, operationRows(res), res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&async, "async", false, "Queue the request instead of waiting for the result")

	return cmd
}

// operationRows — строки таблицы операций, отсортированные по имени.
func operationRows(res *EnrichResponse) [][]string {
	names := make([]string, 0, len(res.Results)+len(res.Errors))
	for name := range res.Results {
		names = append(names, name)
	}
	for name := range res.Errors {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		if msg, failed := res.Errors[name]; failed {
			rows = append(rows, []string{name, "FAILED", summarize(msg, fieldWidth)})
			continue
		}
		rows = append(rows, []string{name, "SUCCEEDED", summarize(res.Results[name], fieldWidth)})
	}
	return rows
}

func newGetCmd(resource string, clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a record document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := clientFn().GetRecord(resource, args[0])
			if err != nil {
				return err
			}

			outputFn().Print([]string{"FIELD", "VALUE"}, fieldRows(record), record)
			return nil
		},
	}
}

// fieldRows — строки таблицы полей записи, отсортированные по имени.
func fieldRows(record map[string]any) [][]string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = []string{k, summarize(record[k], fieldWidth)}
	}
	return rows
}

func newPutCmd(resource string, clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "put ID --file doc.json",
		Short: "Create or replace a record document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			record, err := clientFn().PutRecord(resource, args[0], doc)
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success(fmt.Sprintf("Saved %s", args[0]))
			out.Print([]string{"FIELD", "VALUE"}, fieldRows(record), record)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON document file (- for stdin)")
	cmd.MarkFlagRequired("file")

	return cmd
}

// readDocument читает JSON-объект из файла или stdin.
func readDocument(stdin io.Reader, file string) (json.RawMessage, error) {
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("document must be a JSON object")
	}
	return json.RawMessage(data), nil
}
