package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/dto"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Run the stock update from a gs:// URI or a local CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		uri, _ := cmd.Flags().GetString("uri")
		file, _ := cmd.Flags().GetString("file")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if (uri == "") == (file == "") {
			return errors.New("exactly one of --uri or --file is required")
		}

		ctx := cmd.Context()
		a, err := cargarApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		pterm.DefaultHeader.WithFullWidth().Println("Glop → Holded stock update")
		if dryRun {
			pterm.Warning.Println("Dry run: Holded will not be modified")
		}

		spinner, _ := pterm.DefaultSpinner.Start("Processing sales export...")
		var res *model.ResultadoLote
		if uri != "" {
			res, err = a.Actualizacion.ActualizarDesdeGCS(ctx, dto.ActualizarDesdeGCSRequest{GSURI: uri, DryRun: &dryRun})
		} else {
			var data []byte
			data, err = os.ReadFile(file)
			if err != nil {
				spinner.Fail("Could not read file")
				return errors.Wrapf(err, "read %s", file)
			}
			res, err = a.Actualizacion.ActualizarDesdeArchivo(ctx, filepath.Base(file), data, dryRun)
		}
		if err != nil {
			spinner.Fail("Run failed")
			return err
		}
		spinner.Success("Run finished")

		imprimirResultado(res)
		return nil
	},
}

func init() {
	updateCmd.Flags().String("uri", "", "gs://bucket/path/file.csv")
	updateCmd.Flags().String("file", "", "local CSV path")
	updateCmd.Flags().Bool("dry-run", true, "simulate without writing to Holded")
}

func imprimirResultado(res *model.ResultadoLote) {
	filas := pterm.TableData{{"Row", "SKU", "Warehouse", "Sold", "Current", "New", "Status"}}
	ajusteTotal := decimal.Zero
	for _, m := range res.Movimientos {
		ajusteTotal = ajusteTotal.Add(decimal.NewFromFloat(m.Ajuste))
		filas = append(filas, []string{
			fmt.Sprint(m.Fila),
			m.SKU,
			m.Almacen,
			formatear(m.UnidadesVendidas),
			formatear(m.StockActual),
			formatear(m.StockNuevo),
			string(m.Estado),
		})
	}
	if len(res.Movimientos) > 0 {
		_ = pterm.DefaultTable.WithHasHeader().WithData(filas).Render()
	}

	for _, e := range res.Errores {
		pterm.Error.Printf("row %d (%s): %s\n", e.Fila, e.SKU, e.Error)
	}

	_ = pterm.DefaultBulletList.WithItems([]pterm.BulletListItem{
		{Level: 0, Text: fmt.Sprintf("processed: %d", res.Procesadas)},
		{Level: 0, Text: fmt.Sprintf("updated: %d", res.Actualizadas)},
		{Level: 0, Text: fmt.Sprintf("errors: %d", len(res.Errores))},
		{Level: 0, Text: "total adjustment: " + ajusteTotal.String()},
	}).Render()
}

func formatear(v float64) string {
	return decimal.NewFromFloat(v).String()
}
