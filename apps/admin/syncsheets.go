package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) syncSheets() error {
	res, err := cli.sheets.Sync(context.Background())
	if err != nil {
		return err
	}
	for _, sh := range res.Sheets {
		fmt.Fprintf(cli.out, "%s: %d rows\n", sh.Sheet, sh.Rows)
	}
	return nil
}
