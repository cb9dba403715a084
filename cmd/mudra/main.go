// Command mudra shows hand landmarks from a webcam (track) or counts the
// extended fingers of the first visible hand and shows a matching picture
// (count).
package main

func main() {
	Execute()
}
