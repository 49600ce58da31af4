package cmd

import (
	"github.com/marcus/phonebook/internal/courses"
	"github.com/marcus/phonebook/internal/models"
	"github.com/marcus/phonebook/internal/output"
	"github.com/spf13/cobra"
)

var coursesCmd = &cobra.Command{
	Use:     "courses",
	Short:   "Show course parts and exercise totals",
	GroupID: "views",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		jsonOut, _ := cmd.Flags().GetBool("json")
		return runCourses(file, jsonOut)
	},
}

func runCourses(file string, jsonOut bool) error {
	var (
		list []models.Course
		err  error
	)
	if file != "" {
		list, err = courses.Load(file)
	} else {
		list, err = courses.Default()
	}
	if err != nil {
		output.Error("%v", err)
		return err
	}

	if jsonOut {
		return output.JSON(list)
	}

	rendered, err := output.RenderMarkdown(courses.Markdown(list))
	if err != nil {
		output.Error("render: %v", err)
		return err
	}
	output.Info("%s", rendered)
	return nil
}

func init() {
	coursesCmd.Flags().String("file", "", "TOML catalog to read instead of the built-in one")
	coursesCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(coursesCmd)
}
