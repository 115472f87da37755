// ABOUTME: Entry point for the vocalis CLI
// ABOUTME: Delegates to the cobra command tree
package main

func main() {
	Execute()
}
