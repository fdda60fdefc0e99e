// pkg/constants/container_statuses.go
package constants

// Статусы контейнерного трекинга. Порядок фиксированный: события внутри
// одного контейнера обязаны идти строго по возрастанию ранга, пропуски
// допускаются, возвраты и повторы - нет.
const (
	ContainerStatusEmptyPickedUp = "EMPTY_PICKED_UP"
	ContainerStatusGateIn        = "GATE_IN"
	ContainerStatusLoadedVessel  = "LOADED_ON_VESSEL"
	ContainerStatusDeparted      = "VESSEL_DEPARTED"
	ContainerStatusTransshipment = "ARRIVED_TRANSSHIPMENT"
	ContainerStatusVesselArrived = "VESSEL_ARRIVED"
	ContainerStatusDischarged    = "DISCHARGED"
	ContainerStatusGateOut       = "GATE_OUT"
	ContainerStatusDelivered     = "DELIVERED"
)

// containerStatusRanks - таблица рангов. Сравнивать статусы можно только
// по рангу, строковые значения - только на равенство.
var containerStatusRanks = map[string]int{
	ContainerStatusEmptyPickedUp: 1,
	ContainerStatusGateIn:        2,
	ContainerStatusLoadedVessel:  3,
	ContainerStatusDeparted:      4,
	ContainerStatusTransshipment: 5,
	ContainerStatusVesselArrived: 6,
	ContainerStatusDischarged:    7,
	ContainerStatusGateOut:       8,
	ContainerStatusDelivered:     9,
}

// containerStatusLabels - отображаемые названия для отчётов и уведомлений.
var containerStatusLabels = map[string]string{
	ContainerStatusEmptyPickedUp: "Empty Picked Up",
	ContainerStatusGateIn:        "Gate In",
	ContainerStatusLoadedVessel:  "Loaded on Vessel",
	ContainerStatusDeparted:      "Vessel Departed",
	ContainerStatusTransshipment: "Arrived at Transshipment Port",
	ContainerStatusVesselArrived: "Vessel Arrived",
	ContainerStatusDischarged:    "Discharged",
	ContainerStatusGateOut:       "Gate Out",
	ContainerStatusDelivered:     "Delivered",
}

// ContainerStatusRank возвращает ранг статуса и false, если статус неизвестен.
func ContainerStatusRank(status string) (int, bool) {
	rank, ok := containerStatusRanks[status]
	return rank, ok
}

// ContainerStatusLabel возвращает отображаемое название статуса.
func ContainerStatusLabel(status string) string {
	if label, ok := containerStatusLabels[status]; ok {
		return label
	}
	return status
}
