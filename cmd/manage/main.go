package main

import "foodgram/cmd/manage/command"

func main() {
	command.Execute()
}
