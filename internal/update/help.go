package update

const helpMarkdown = `# Commands

Open the palette with **/** and type one of:

| Command | Effect |
|---|---|
| ` + "`add <text> [!prio] [+Cat] [#tag] [@HH:MM] [~25m]`" + ` | add a task |
| ` + "`timer [target] <duration>`" + ` | start a countdown |
| ` + "`stop [target]`" + ` | stop a countdown |
| ` + "`alarm [target] <HH:MM|off>`" + ` | set or clear the daily alarm |
| ` + "`done [target]`" + ` | toggle completion |
| ` + "`rm [target]`" + ` | delete a task |
| ` + "`search <query>`" + ` | find focus music |
| ` + "`filter [all|active|completed] [!prio] [+Cat]`" + ` | narrow the task list |

A target is a row number, a task id, ` + "`latest`" + `, or ` + "`.`" + ` for the selection.
Durations accept ` + "`25`" + ` (minutes), ` + "`90s`" + ` or ` + "`1h30m`" + `.
`
