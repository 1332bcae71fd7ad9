package main

import "github.com/rabnra2016/issue-tracker-mvp/cmd"

func main() {
	cmd.Execute()
}
