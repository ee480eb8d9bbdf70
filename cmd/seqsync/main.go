package main

import "github.com/glbrc/seqsync/cmd/seqsync/cmd"

func main() {
	cmd.Execute()
}
