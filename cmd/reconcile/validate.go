package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compare a sales export with Holded stock without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		data, err := os.ReadFile(file)
		if err != nil {
			return errors.Wrapf(err, "read %s", file)
		}

		ctx := cmd.Context()
		a, err := cargarApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		resp, err := a.CSV.ValidarStock(ctx, filepath.Base(file), data, time.Now())
		if err != nil {
			return err
		}

		filas := pterm.TableData{{"SKU", "Name", "Kind", "Old", "Sold", "New"}}
		for _, v := range resp.ValidationResults {
			filas = append(filas, []string{
				v.SKU, v.HoldedName, v.Kind,
				formatear(v.OldStock), fmt.Sprint(v.SoldQty), formatear(v.NewStock),
			})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(filas).Render()

		for _, m := range resp.MissingSKUs {
			pterm.Warning.Printf("missing in Holded: %s (%s), sold %d\n", m.SKU, m.CSVName, m.SoldQty)
		}
		pterm.Info.Printf("%d SKUs, %d found, %d missing, %d units sold\n",
			resp.Summary.TotalItems, resp.Summary.FoundItems, resp.Summary.MissingItems, resp.FileInfo.TotalUnitsSold)
		return nil
	},
}

func init() {
	validateCmd.Flags().String("file", "", "local CSV path")
	_ = validateCmd.MarkFlagRequired("file")
}
