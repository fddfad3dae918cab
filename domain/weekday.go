package domain

// DaysPerWeek — число учебных дней в сетке нагрузки (пн-сб)
const DaysPerWeek = 6

// WeekdayIndex — индекс дня недели в сетке нагрузки, 0 - понедельник, 5 - суббота
type WeekdayIndex int

// WeekdayPolicy переводит код дня недели из исходной системы в индекс сетки
type WeekdayPolicy func(code int) WeekdayIndex

// SaturdayFallback — политика по умолчанию: коды 2..6 дают пн..пт,
// любой другой код (включая 7 и нераспознанные) попадает в субботнюю ячейку.
func SaturdayFallback(code int) WeekdayIndex {
	switch code {
	case 2, 3, 4, 5, 6:
		return WeekdayIndex(code - 2)
	default:
		return WeekdayIndex(DaysPerWeek - 1)
	}
}

// NormalizeWeekday применяет политику по умолчанию
func NormalizeWeekday(code int) WeekdayIndex {
	return SaturdayFallback(code)
}

// AdjustedWeekday — день недели для календаря: код минус 2.
// Отрицательное значение означает занятие без фиксированного времени.
func AdjustedWeekday(code int) int {
	return code - 2
}
