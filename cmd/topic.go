package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/costfolio/costfolio/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show a documentation topic" }
func (*topicCmd) Usage() string {
	return `topic [name]:
  Show a documentation topic, or list the topics when no name is given.
`
}

func (*topicCmd) SetFlags(*flag.FlagSet) {}

func (c *topicCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Printf("topics: %s\n", strings.Join(docs.Topics(), ", "))
		return subcommands.ExitSuccess
	}
	name := f.Arg(0)
	body, ok := docs.Get(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "cfo: no topic %q, try: %s\n", name, strings.Join(docs.Topics(), ", "))
		return subcommands.ExitFailure
	}
	printMarkdown(body)
	return subcommands.ExitSuccess
}
