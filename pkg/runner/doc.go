/*
Package runner implements an interactive text console over a session driver.

It reads one command per line, executes it on the driver's board and prints the
result. Input is read by a background pump so a cancelled context stops the
console even while it waits on a line.

# Commands

	show                  print the notation (and the board, when a board renderer is set)
	set <notation|preset> transition to a position and print the plan
	load <name>           transition to a stored position
	move <from> <to> [label]
	query <square>        list the tokens on a square
	rotate <degrees>      animated rotation by a whole number of degrees
	angle <degrees>       set the rotation directly
	scale <factor>        set the base scale
	wait                  block until the board is idle
	help, quit

# Usage

	c := runner.New(driver, os.Stdin, os.Stdout,
		runner.WithBoardRenderer(view.Render),
	)
	if err := c.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
