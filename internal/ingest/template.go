package ingest

const (
	TemplateFileName    = "plantilla_vacaciones.xls"
	TemplateContentType = "application/vnd.ms-excel"
)

var templateColumns = []string{
	"User ID", "Nombre", "Email", "Lider", "Fecha desde", "Fecha hasta", "Tipo", "Motivo", "Estado",
}

// Template is the header line users fill in before importing.
func Template() []byte {
	out := make([]byte, 0, 96)
	for i, col := range templateColumns {
		if i > 0 {
			out = append(out, '\t')
		}
		out = append(out, col...)
	}
	return append(out, '\n')
}

func TemplateColumns() []string {
	return append([]string(nil), templateColumns...)
}
