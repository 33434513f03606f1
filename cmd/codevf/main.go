// Command codevf is a command-line client for the CodeVF API.
package main

func main() {
	Execute()
}
