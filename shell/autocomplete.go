package shell

import (
	"github.com/chzyer/readline"
)

var commandNames = []string{
	"new", "join", "load", "list", "show", "rack", "place", "retract",
	"move", "revert", "words", "commit", "state", "help", "exit",
}

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(commandNames))
	for _, name := range commandNames {
		if name == "help" {
			items = append(items, readline.PcItem(name,
				readline.PcItem("place"), readline.PcItem("commit")))
			continue
		}
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}
