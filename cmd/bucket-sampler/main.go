package main

import "github.com/cybozu-go/bucket-sampler/cmd/bucket-sampler/cmd"

func main() {
	cmd.Execute()
}
