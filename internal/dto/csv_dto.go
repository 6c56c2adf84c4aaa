package dto

// PreviewCSVResponse is the parsed view of an uploaded CSV.
type PreviewCSVResponse struct {
	Message  string              `json:"message"`
	Filename string              `json:"filename"`
	Size     int                 `json:"size"`
	Rows     int                 `json:"rows"`
	Columns  []string            `json:"columns"`
	Data     []map[string]string `json:"data"`
}

type ArchivoInfo struct {
	Filename       string `json:"filename"`
	CreationDate   string `json:"creation_date"`
	TotalRows      int    `json:"total_rows"`
	UniqueSKUs     int    `json:"unique_skus"`
	TotalUnitsSold int64  `json:"total_units_sold"`
}

type HoldedInfo struct {
	TotalProducts int `json:"total_products"`
	TotalVariants int `json:"total_variants"`
	TotalSKUs     int `json:"total_skus"`
}

// ValidacionItem is a CSV SKU found in Holded.
type ValidacionItem struct {
	SKU        string  `json:"sku"`
	CSVName    string  `json:"csv_name"`
	HoldedName string  `json:"holded_name"`
	OldStock   float64 `json:"old_stock"`
	SoldQty    int64   `json:"sold_qty"`
	NewStock   float64 `json:"new_stock"`
	Found      bool    `json:"found"`
	Kind       string  `json:"kind"` // product | variant
}

type SKUFaltante struct {
	SKU     string `json:"sku"`
	CSVName string `json:"csv_name"`
	SoldQty int64  `json:"sold_qty"`
}

type ValidacionResumen struct {
	TotalItems   int `json:"total_items"`
	FoundItems   int `json:"found_items"`
	MissingItems int `json:"missing_items"`
}

// ValidacionStockResponse compares aggregated CSV sales against Holded stock
// without touching anything.
type ValidacionStockResponse struct {
	FileInfo          ArchivoInfo       `json:"file_info"`
	HoldedInfo        HoldedInfo        `json:"holded_info"`
	ValidationResults []ValidacionItem  `json:"validation_results"`
	MissingSKUs       []SKUFaltante     `json:"missing_skus"`
	Summary           ValidacionResumen `json:"summary"`
}
