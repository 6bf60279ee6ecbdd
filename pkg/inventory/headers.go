package inventory

import (
	"strconv"
	"strings"
	"time"
)

// headerMapping maps lowercased source header text to internal field keys.
// Unmapped headers are ignored.
var headerMapping = map[string]string{
	"estatus":             "estatus",
	"post_id":             "post_id",
	"ordenid":             "ordenid",
	"ordenfolio":          "ordenfolio",
	"ordencompra":         "ordencompra",
	"automarca":           "automarca",
	"autosubmarcaversion": "autosubmarcaversion",
	"autoano":             "autoano",
	"autoprecio":          "autoprecio",
	"clasificacionid":     "clasificacionid",
	"autokilometraje":     "autokilometraje",
	"sucursalid":          "sucursalid",
	"sucursal":            "sucursal",
	"enganchemin":         "enganchemin",
	"mensualidad":         "mensualidad",
	"plazo":               "plazo",
	"fotooficial":         "fotooficial",
	"colorexterior":       "colorexterior",
	"colorinterior":       "colorinterior",
	"autocilindros":       "autocilindros",
	"autocombustible":     "autocombustible",
	"autotransmision":     "autotransmision",
	"autogarantia":        "autogarantia",
	"automotor":           "automotor",
	"numerosiniestros":    "nosiniestros",
	"detallesesteticos":   "detallesesteticos",
	"proximamente":        "proximamente",
	"separado":            "separado",
	"fotosexterior":       "fotos_exterior",
	"fotosinterior":       "fotos_interior",
	"foto360":             "foto360",
	"separable":           "separable",
	"montoseparacion":     "montoseparacion",
	"keyword":             "keyword",
	"supportkeywordslist": "supportkeywordslist",
	"metadescripcion":     "metadescripcion",
	"ordenstatus":         "ordenstatus",
	"ultimamodificacion":  "ultimamodificacion",
	"last_sync_time":      "last_sync_time",
	"make_id":             "make_id",
	"model_id":            "model_id",
	"featured_image_id":   "featured_image_id",
	"fotos_exterior_ids":  "fotos_exterior_ids",
	"fotos_interior_ids":  "fotos_interior_ids",
}

// timeLayouts are the timestamp formats accepted from the source, tried in
// order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// ColumnIndex maps internal field keys to column positions for the given
// header row.
func ColumnIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, header := range headers {
		if key, ok := headerMapping[strings.ToLower(strings.TrimSpace(header))]; ok {
			index[key] = i
		}
	}
	return index
}

// FromRow builds a Record from a source row using the column index. The row
// number is 1-based and includes the header row, matching the source's own
// numbering.
func FromRow(row []string, index map[string]int, rowNumber int) *Record {
	cell := func(key string) string {
		i, ok := index[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	r := &Record{
		Row:                 rowNumber,
		Estatus:             cell("estatus"),
		OrdenCompra:         cell("ordencompra"),
		OrdenStatus:         Status(cell("ordenstatus")),
		OrdenID:             cell("ordenid"),
		OrdenFolio:          cell("ordenfolio"),
		AutoMarca:           cell("automarca"),
		AutoSubmarcaVersion: cell("autosubmarcaversion"),
		AutoAno:             cell("autoano"),
		AutoPrecio:          cell("autoprecio"),
		AutoKilometraje:     cell("autokilometraje"),
		AutoMotor:           cell("automotor"),
		AutoCombustible:     cell("autocombustible"),
		AutoTransmision:     cell("autotransmision"),
		AutoCilindros:       cell("autocilindros"),
		AutoGarantia:        cell("autogarantia"),
		ColorExterior:       cell("colorexterior"),
		ColorInterior:       cell("colorinterior"),
		DetallesEsteticos:   cell("detallesesteticos"),
		NoSiniestros:        cell("nosiniestros"),
		MontoSeparacion:     cell("montoseparacion"),
		EngancheMin:         cell("enganchemin"),
		Mensualidad:         cell("mensualidad"),
		Plazo:               cell("plazo"),
		Proximamente:        cell("proximamente"),
		Separado:            cell("separado"),
		Separable:           cell("separable"),
		Sucursal:            cell("sucursal"),
		SucursalID:          cell("sucursalid"),
		ClasificacionID:     cell("clasificacionid"),
		Keyword:             cell("keyword"),
		SupportKeywords:     cell("supportkeywordslist"),
		MetaDescripcion:     cell("metadescripcion"),
		FotoOficial:         cell("fotooficial"),
		Foto360:             cell("foto360"),
		FotosExterior:       splitList(cell("fotos_exterior")),
		FotosInterior:       splitList(cell("fotos_interior")),
		UltimaModificacion:  parseTime(cell("ultimamodificacion")),
		LastSyncTime:        parseTime(cell("last_sync_time")),
		PostID:              parseInt(cell("post_id")),
		MakeID:              parseInt(cell("make_id")),
		ModelID:             parseInt(cell("model_id")),
		FeaturedImageID:     parseInt(cell("featured_image_id")),
		FotosExteriorIDs:    parseIntList(cell("fotos_exterior_ids")),
		FotosInteriorIDs:    parseIntList(cell("fotos_interior_ids")),
	}

	return r
}

// splitList splits a comma-separated cell into trimmed, non-empty values.
func splitList(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// JoinIDs renders media/term IDs back into the comma-separated cell format.
func JoinIDs(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func parseTime(cell string) time.Time {
	if cell == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseInt(cell string) int {
	if cell == "" {
		return 0
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		return 0
	}
	return n
}

func parseIntList(cell string) []int {
	values := splitList(cell)
	if len(values) == 0 {
		return nil
	}
	ids := make([]int, 0, len(values))
	for _, v := range values {
		if n, err := strconv.Atoi(v); err == nil && n != 0 {
			ids = append(ids, n)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}
