package main

import (
	"os"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/service"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Show stock per warehouse for every SKU in Holded",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("xlsx")

		ctx := cmd.Context()
		a, err := cargarApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		informe, err := a.HoldedSvc.StockPorAlmacen(ctx)
		if err != nil {
			return err
		}

		if out != "" {
			data, err := service.ExportarInformeXLSX(informe)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return errors.Wrapf(err, "write %s", out)
			}
			pterm.Success.Printf("Report written to %s\n", out)
			return nil
		}

		cabecera := []string{"SKU", "Name", "Type"}
		for _, al := range informe.Almacenes {
			cabecera = append(cabecera, al.Nombre)
		}
		filas := pterm.TableData{cabecera}
		for _, p := range informe.Productos {
			fila := []string{p.SKU, p.Nombre, p.Tipo}
			for _, al := range informe.Almacenes {
				fila = append(fila, formatear(p.StockPorAlmacen[al.ID]))
			}
			filas = append(filas, fila)
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(filas).Render()
		pterm.Info.Printf("%d warehouses, %d products, %d variants\n",
			informe.Resumen.TotalAlmacenes, informe.Resumen.TotalProductos, informe.Resumen.TotalVariantes)
		return nil
	},
}

func init() {
	stockCmd.Flags().String("xlsx", "", "write the report to this .xlsx file instead of printing it")
}
