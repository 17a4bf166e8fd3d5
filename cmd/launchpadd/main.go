package main

import (
	"log"

	"launchpad/services/launchpadd"
)

func main() {
	if err := launchpadd.Main(); err != nil {
		log.Fatalf("launchpadd: %v", err)
	}
}
