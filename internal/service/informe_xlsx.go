package service

import (
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/model"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"
)

const hojaInforme = "Stock"

// ExportarInformeXLSX renders the stock-by-warehouse report as a spreadsheet:
// SKU, name, type, then one column per warehouse.
func ExportarInformeXLSX(inf *model.InformeStock) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", hojaInforme); err != nil {
		return nil, errors.Wrap(err, "xlsx: rename sheet")
	}

	cabecera := []interface{}{"SKU", "Nombre", "Tipo"}
	for _, a := range inf.Almacenes {
		cabecera = append(cabecera, a.Nombre)
	}
	if err := f.SetSheetRow(hojaInforme, "A1", &cabecera); err != nil {
		return nil, errors.Wrap(err, "xlsx: header")
	}

	for i, p := range inf.Productos {
		fila := []interface{}{p.SKU, p.Nombre, p.Tipo}
		for _, a := range inf.Almacenes {
			fila = append(fila, p.StockPorAlmacen[a.ID])
		}
		celda, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, errors.Wrap(err, "xlsx: cell name")
		}
		if err := f.SetSheetRow(hojaInforme, celda, &fila); err != nil {
			return nil, errors.Wrapf(err, "xlsx: row %d", i+2)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "xlsx: write")
	}
	return buf.Bytes(), nil
}
