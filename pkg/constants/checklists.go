// pkg/constants/checklists.go
package constants

// JobStageNames - фиксированный список этапов джоба. Этап 1 отмечается
// выполненным сразу при создании джоба из одобренной котировки.
var JobStageNames = []string{
	"Job opened",
	"Booking confirmed",
	"Cargo in transit",
	"Customs clearance",
	"Delivery to consignee",
}

// Чек-листы документов выбираются по направлению перевозки при создании джоба.
var (
	ImportDocumentChecklist = []string{
		"Bill of Lading",
		"Commercial Invoice",
		"Packing List",
		"Import Customs Declaration",
		"Delivery Order",
	}

	ExportDocumentChecklist = []string{
		"Booking Confirmation",
		"Commercial Invoice",
		"Packing List",
		"Export Customs Declaration",
		"Certificate of Origin",
	}
)

// DocumentChecklistForDirection возвращает чек-лист для направления.
func DocumentChecklistForDirection(direction string) []string {
	if direction == DirectionExport {
		return append([]string(nil), ExportDocumentChecklist...)
	}
	return append([]string(nil), ImportDocumentChecklist...)
}
