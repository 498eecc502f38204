package export

import (
	"fmt"
	"io"

	"github.com/sysu-ecnc-dev/tournament-manager/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	GridSheet  = "赛程"
	ListSheet  = "比赛列表"
	TeamsSheet = "队伍"
)

// ScheduleWorkbook 将赛程导出为 xlsx：
//   - 赛程：行为轮次，列为场地
//   - 比赛列表：每行一场比赛
//   - 队伍：每支队伍的出场次数
type ScheduleWorkbook struct {
	Tournament  *domain.Tournament
	Matches     []*domain.Match
	Teams       []*domain.Team
	Playgrounds []*domain.Playground
}

func (wb *ScheduleWorkbook) teamName(id int64) string {
	for _, t := range wb.Teams {
		if t.ID == id {
			return t.Name
		}
	}
	return fmt.Sprintf("队伍 %d", id)
}

func (wb *ScheduleWorkbook) rounds() int {
	n := 0
	for _, m := range wb.Matches {
		if int(m.Round)+1 > n {
			n = int(m.Round) + 1
		}
	}
	return n
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func (wb *ScheduleWorkbook) writeGrid(f *excelize.File) error {
	header := []any{"轮次"}
	column := make(map[int64]int, len(wb.Playgrounds))
	for i, pg := range wb.Playgrounds {
		header = append(header, pg.Name)
		column[pg.ID] = i + 2
	}
	if err := setRow(f, GridSheet, 1, header...); err != nil {
		return err
	}

	for round := 0; round < wb.rounds(); round++ {
		if err := setRow(f, GridSheet, round+2, fmt.Sprintf("第 %d 轮", round+1)); err != nil {
			return err
		}
	}

	for _, m := range wb.Matches {
		col, ok := column[m.PlaygroundID]
		if !ok || m.Round < 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col, int(m.Round)+2)
		if err != nil {
			return err
		}
		value := fmt.Sprintf("%s vs %s", wb.teamName(m.Team1ID), wb.teamName(m.Team2ID))
		if err := f.SetCellValue(GridSheet, cell, value); err != nil {
			return err
		}
	}

	if len(wb.Playgrounds) == 0 {
		return nil
	}
	lastCol, err := excelize.ColumnNumberToName(len(wb.Playgrounds) + 1)
	if err != nil {
		return err
	}
	return f.SetColWidth(GridSheet, "B", lastCol, 24)
}

func (wb *ScheduleWorkbook) writeList(f *excelize.File) error {
	if _, err := f.NewSheet(ListSheet); err != nil {
		return err
	}
	if err := setRow(f, ListSheet, 1, "轮次", "场地", "组别", "队伍一", "队伍二"); err != nil {
		return err
	}

	playgroundName := make(map[int64]string, len(wb.Playgrounds))
	for _, pg := range wb.Playgrounds {
		playgroundName[pg.ID] = pg.Name
	}

	for i, m := range wb.Matches {
		values := []any{int(m.Round) + 1, playgroundName[m.PlaygroundID], m.Group, wb.teamName(m.Team1ID), wb.teamName(m.Team2ID)}
		if err := setRow(f, ListSheet, i+2, values...); err != nil {
			return err
		}
	}
	return nil
}

func (wb *ScheduleWorkbook) writeTeams(f *excelize.File) error {
	if _, err := f.NewSheet(TeamsSheet); err != nil {
		return err
	}
	if err := setRow(f, TeamsSheet, 1, "队名", "简称", "组别", "场次"); err != nil {
		return err
	}

	played := make(map[int64]int, len(wb.Teams))
	for _, m := range wb.Matches {
		played[m.Team1ID]++
		played[m.Team2ID]++
	}

	for i, t := range wb.Teams {
		if err := setRow(f, TeamsSheet, i+2, t.Name, t.ShortName, t.Group, played[t.ID]); err != nil {
			return err
		}
	}
	return nil
}

// Build 生成工作簿，调用方负责 Close
func (wb *ScheduleWorkbook) Build() (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", GridSheet); err != nil {
		f.Close()
		return nil, err
	}

	for _, write := range []func(*excelize.File) error{wb.writeGrid, wb.writeList, wb.writeTeams} {
		if err := write(f); err != nil {
			f.Close()
			return nil, err
		}
	}

	if wb.Tournament != nil {
		if err := f.SetDocProps(&excelize.DocProperties{
			Title:   wb.Tournament.Name,
			Creator: "tournament-manager",
		}); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func (wb *ScheduleWorkbook) WriteTo(w io.Writer) (int64, error) {
	f, err := wb.Build()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return f.WriteTo(w)
}

func (wb *ScheduleWorkbook) SaveAs(path string) error {
	f, err := wb.Build()
	if err != nil {
		return err
	}
	defer f.Close()

	return f.SaveAs(path)
}
