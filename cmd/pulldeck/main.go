package main

import (
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/pulldeck/internal/cli"
)

func main() {
	cli.Execute()
}
