package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/antonio-alexander/go-employee-client/internal"
	"github.com/antonio-alexander/go-employee-client/internal/client"
	"github.com/antonio-alexander/go-employee-client/internal/data"
	"github.com/antonio-alexander/go-employee-client/internal/utilities"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

func main() {
	args := os.Args[1:]
	envs, err := internal.Envs(".env")
	if err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(args, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

type employeeClient interface {
	internal.Configurer
	internal.Opener
	client.Client
}

func printJSON(out io.Writer, item any) error {
	byts, err := json.MarshalIndent(item, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(byts))
	return err
}

func parseId(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid employee id: %s", arg)
	}
	return id, nil
}

func employeeFlags(cmd *cobra.Command, employee *data.Employee) {
	cmd.Flags().StringVar(&employee.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&employee.LastName, "last-name", "", "last name")
	cmd.Flags().IntVar(&employee.Age, "age", 0, "age")
	cmd.Flags().StringVar(&employee.Gender, "gender", "", "gender")
	cmd.Flags().StringVar(&employee.Role, "role", "", "role")
}

// newRootCommand builds the command tree; the client is configured and
// opened before any sub command runs and closed afterwards
func newRootCommand(c employeeClient, logger interface {
	internal.Configurer
	utilities.Logger
}, envs map[string]string, out io.Writer) *cobra.Command {
	var retry bool
	var employeeCreate, employeeUpdate data.Employee

	root := &cobra.Command{
		Use:           "client",
		Short:         "employee service client",
		Version:       fmt.Sprintf("v%s (%s) built from: %s", Version, GitCommit, GitBranch),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Configure(envs); err != nil {
				return err
			}
			if err := c.Configure(envs); err != nil {
				return err
			}
			return c.Open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.Close(context.Background())
		},
	}
	root.SetOut(out)

	list := &cobra.Command{
		Use:   "list",
		Short: "list all employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := c.EmployeesList(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), employees)
		},
	}

	get := &cobra.Command{
		Use:   "get [id]",
		Short: "read an employee by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var employee *data.Employee

			id, err := parseId(args[0])
			if err != nil {
				return err
			}
			switch {
			default:
				employee, err = c.EmployeeRead(cmd.Context(), id)
			case retry:
				employee, err = c.EmployeeReadWithRetry(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), employee)
		},
	}
	get.Flags().BoolVar(&retry, "retry", false, "retry failed reads with exponential backoff")

	find := &cobra.Command{
		Use:   "find [name]",
		Short: "find employees by first name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := c.EmployeesByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), employees)
		},
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "create an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			employee, err := c.EmployeeCreate(cmd.Context(), employeeCreate)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), employee)
		},
	}
	employeeFlags(create, &employeeCreate)

	update := &cobra.Command{
		Use:   "update [id]",
		Short: "update the provided fields of an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseId(args[0])
			if err != nil {
				return err
			}
			employee, err := c.EmployeeUpdate(cmd.Context(), id, employeeUpdate)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), employee)
		},
	}
	employeeFlags(update, &employeeUpdate)

	remove := &cobra.Command{
		Use:   "delete [id]",
		Short: "delete an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseId(args[0])
			if err != nil {
				return err
			}
			message, err := c.EmployeeDelete(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), message)
			return err
		},
	}

	errorEndpoint := &cobra.Command{
		Use:   "error",
		Short: "call the endpoint that always fails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := c.ErrorEndpoint(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), message)
			return err
		},
	}

	root.AddCommand(list, get, find, create, update, remove, errorEndpoint)
	return root
}

func Main(args []string, envs map[string]string, osSignal chan os.Signal) error {
	var wg sync.WaitGroup

	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer func() {
		cancel()
		wg.Wait()
	}()

	logger := utilities.NewLogger(os.Stderr)
	root := newRootCommand(client.NewClient(logger), logger, envs, os.Stdout)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if statusCode := client.StatusCode(err); statusCode != 0 {
			return errors.Errorf("%d: %s", statusCode, client.Message(err))
		}
		return err
	}
	return nil
}
