package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/course-planner/internal/degree"
	"github.com/Veraticus/course-planner/internal/model"
)

// QuarterLabel names a quarter index, e.g. "Autumn, year 1".
func QuarterLabel(quarter int) string {
	term, year := model.QuarterTerm(quarter)
	return fmt.Sprintf("%s, year %d", term, year+1)
}

type column struct {
	title string
	width int
}

func renderTable(cols []column, rows [][]string) string {
	var b strings.Builder

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = TableCellStyle.Width(c.width).Render(c.title)
	}
	b.WriteString(TableHeaderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, header...)))
	b.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = TableCellStyle.Width(c.width).Render(row[i])
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSchedule renders a plan as a quarter by quarter table. Course names
// come from db when it knows the course.
func RenderSchedule(plan *model.Plan, db model.ClassDatabase) string {
	if len(plan.Courses) == 0 {
		return FormatWarning("The best schedule is to take 0 units every quarter.") + "\n"
	}

	var rows [][]string
	byQuarter := plan.ByQuarter()
	for _, q := range plan.Quarters() {
		units := 0
		for _, c := range byQuarter[q] {
			units += c.Units
		}
		for i, c := range byQuarter[q] {
			quarter, total := "", ""
			if i == 0 {
				quarter, total = QuarterStyle.Render(QuarterLabel(q)), fmt.Sprintf("%d", units)
			}
			name := ""
			if course, ok := db.Course(c.Course); ok {
				name = MutedRowStyle.Render(course.Name)
			}
			rows = append(rows, []string{quarter, total, c.Course, fmt.Sprintf("%d", c.Units), name})
		}
	}

	table := renderTable([]column{
		{title: "Quarter", width: 18},
		{title: "Load", width: 6},
		{title: "Course", width: 10},
		{title: "Units", width: 7},
		{title: "Name", width: 40},
	}, rows)

	footer := SubtleStyle.Render(fmt.Sprintf("%d units over %d quarters (%s)", plan.TotalUnits(), len(plan.Quarters()), plan.Engine))
	return table + footer + "\n"
}

// RenderProgress lists what the student still has to satisfy.
func RenderProgress(p *degree.Progress) string {
	check := func(ok bool, label, detail string) string {
		if ok {
			return FormatSuccess(label)
		}
		return WarningStyle.Render(PendingIcon+" "+label) + SubtleStyle.Render(" "+detail)
	}

	lines := []string{
		check(p.FoundationsSatisfied(), "Foundations", strings.Join(p.FoundationsLeft(), ", ")),
		check(p.BreadthSatisfied(), "Breadth", strings.Join(p.BreadthLeft(), ", ")),
		check(p.DepthSatisfied(), "Depth", fmt.Sprintf("a:%d b:%d c:%d, %d units left",
			p.DepthAreasLeft[model.DepthA], p.DepthAreasLeft[model.DepthB], p.DepthAreasLeft[model.DepthC], max(p.DepthUnitsLeft, 0))),
		check(p.SignificantImplementationSatisfied, "Significant implementation", "not taken"),
		check(p.UnitsSatisfied(), "Units", fmt.Sprintf("%d of %d", p.TotalRequirementUnitsTaken, degree.TotalUnitsRequired)),
	}

	status := FormatWarning("Program not yet satisfied")
	if p.IsProgramSatisfied() {
		status = FormatSuccess("Program satisfied")
	}
	return RenderBox(BookIcon+" Degree progress", strings.Join(lines, "\n")) + "\n" + status + "\n"
}

// RenderRequirements renders the requirement table.
func RenderRequirements(table model.RequirementTable) string {
	rows := make([][]string, len(table))
	for i, r := range table {
		rows[i] = []string{r.Course, string(r.Category), r.Subcategory}
	}
	return renderTable([]column{
		{title: "Course", width: 12},
		{title: "Category", width: 28},
		{title: "Subcategory", width: 16},
	}, rows)
}

// RenderPlans renders saved plan headers.
func RenderPlans(plans []model.Plan) string {
	if len(plans) == 0 {
		return FormatInfo("No saved plans.") + "\n"
	}
	rows := make([][]string, len(plans))
	for i, p := range plans {
		rows[i] = []string{p.ID, p.Name, p.Engine, fmt.Sprintf("%g", p.Weight), p.CreatedAt.Format("2006-01-02 15:04")}
	}
	return renderTable([]column{
		{title: "ID", width: 38},
		{title: "Name", width: 16},
		{title: "Engine", width: 8},
		{title: "Weight", width: 10},
		{title: "Created", width: 18},
	}, rows)
}
