// Command companyhub runs the company registry API.
package main

import "os"

func main() {
	os.Exit(Execute())
}
