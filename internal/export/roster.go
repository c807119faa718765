// Package export выгружает списки записавшихся в xlsx.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"yoga_schedule_bot/internal/schedule"
	"yoga_schedule_bot/internal/storage/models"
)

const sheetName = "Записи"

var headers = []string{"Дата", "День", "Занятие", "Время", "Название", "№", "Участник"}

// FileName имя файла выгрузки для недели, начинающейся со start
func FileName(start time.Time) string {
	return fmt.Sprintf("yoga_roster_%s.xlsx", start.Format("20060102"))
}

// Roster строит xlsx: одна строка на участника, пустое занятие и выходной дают по строке
func Roster(days []schedule.DayRoster) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", "G1", bold); err != nil {
		return nil, err
	}

	row := 2
	for _, day := range days {
		date := schedule.FormatDate(day.Date)
		dayName := schedule.RussianDayName(day.Date.Weekday())

		if len(day.Classes) == 0 {
			if err := setRow(f, row, date, dayName, "Отдых", "", "", "", ""); err != nil {
				return nil, err
			}
			row++
			continue
		}

		for _, class := range day.Classes {
			kind := className(class.ClassType)
			if len(class.Names) == 0 {
				if err := setRow(f, row, date, dayName, kind, class.Time, class.Label, "", schedule.EmptyListSentinel); err != nil {
					return nil, err
				}
				row++
				continue
			}
			for i, name := range class.Names {
				if err := setRow(f, row, date, dayName, kind, class.Time, class.Label, i+1, name); err != nil {
					return nil, err
				}
				row++
			}
		}
	}

	if err := f.SetColWidth(sheetName, "A", "B", 14); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "E", "E", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "G", "G", 28); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values ...interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func className(ct models.ClassType) string {
	if ct == models.Evening {
		return "Вечер"
	}
	return "Утро"
}
