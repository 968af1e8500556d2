package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/tidwall/gjson"
)

// printResult renders v as indented JSON, applying the --query gjson path
// when one was given.
func (a *app) printResult(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if a.query != "" {
		res := gjson.GetBytes(data, a.query)
		if !res.Exists() {
			return fmt.Errorf("query %q matched nothing", a.query)
		}
		fmt.Println(res.String())
		return nil
	}

	var out []byte
	if out, err = json.MarshalIndent(v, "", "  "); err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// table prints aligned rows to stdout for the human-readable summaries.
func table(header []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, h)
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

// wantsJSON reports whether output should be raw JSON.
func (a *app) wantsJSON() bool {
	return a.asJSON || a.query != ""
}
