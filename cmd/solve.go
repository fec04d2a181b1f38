package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"college-scheduler/internal/logger"
	"college-scheduler/internal/model"
)

var days = map[int]string{
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
	6: "Saturday",
	7: "Sunday",
}

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Build and solve the weekly timetable",
	RunE:  solve,
}

func init() {
	rootCmd.AddCommand(solveCmd)
}

func solve(cmd *cobra.Command, args []string) error {
	run, err := loadRun()
	if err != nil {
		return err
	}

	input, err := model.InputFromJSON(inputPath)
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	log := logger.New("solve")
	scheduler := model.NewScheduler(newSolver(run.Solver), run, log)

	schedule, err := scheduler.Build(input)
	if err != nil {
		return err
	}

	for _, timetable := range schedule.Classes {
		fmt.Printf("\n%v / %v / %v\n", timetable.Environment, timetable.Group, timetable.Class)
		printClassGrid(timetable)
	}
	for _, timetable := range schedule.Staff {
		fmt.Printf("\n%v (%v)\n", timetable.Name, timetable.Role)
		printStaffGrid(timetable)
	}

	fmt.Printf("\nTotal gap periods: %d\nTotal active days: %d\n", schedule.TotalGapPeriods, schedule.TotalActiveDays)
	if schedule.TimeLimited {
		fmt.Println("Result is feasible but not proven optimal: the time limit was reached.")
	}

	if !scheduler.Verify(schedule, input) {
		log.Warnf("decoded schedule failed verification")
	}

	return nil
}

func dayName(day int) string {
	if name, ok := days[day]; ok {
		return name
	}
	return fmt.Sprintf("Day %d", day)
}

func printClassGrid(timetable model.ClassTimetable) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	printHeader(writer, len(timetable.Grid[0]))

	for d, row := range timetable.Grid {
		cells := make([]string, 0, len(row))
		for _, session := range row {
			switch session.Kind {
			case model.SessionLecture:
				cells = append(cells, fmt.Sprintf("Lec %v (%v)", session.Subject, session.Staff))
			case model.SessionSection:
				cells = append(cells, fmt.Sprintf("Sec %v (%v)", session.Subject, session.Staff))
			default:
				cells = append(cells, "-")
			}
		}
		fmt.Fprintf(writer, "%v\t%v\n", dayName(d+1), strings.Join(cells, "\t"))
	}
	writer.Flush()
}

func printStaffGrid(timetable model.StaffTimetable) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	printHeader(writer, len(timetable.Grid[0]))

	for d, row := range timetable.Grid {
		cells := make([]string, 0, len(row))
		for _, engagement := range row {
			switch {
			case engagement == nil:
				cells = append(cells, "-")
			case engagement.Class == "":
				cells = append(cells, fmt.Sprintf("%v %v", engagement.Group, engagement.Subject))
			default:
				cells = append(cells, fmt.Sprintf("%v/%v %v", engagement.Group, engagement.Class, engagement.Subject))
			}
		}
		fmt.Fprintf(writer, "%v\t%v\n", dayName(d+1), strings.Join(cells, "\t"))
	}
	writer.Flush()
}

func printHeader(writer *tabwriter.Writer, periods int) {
	header := make([]string, 0, periods+1)
	header = append(header, "")
	for p := 1; p <= periods; p++ {
		header = append(header, fmt.Sprintf("P%d", p))
	}
	fmt.Fprintln(writer, strings.Join(header, "\t"))
}
