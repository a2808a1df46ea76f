package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/anki0476/rigveda-explorer/internal/story"
)

const defaultStoryPath = "./internal/story/content/story.json"

func indentAndWrite(data []byte, filePath string) (bool, error) {
	indentedDataBuffer := bytes.NewBuffer(nil)
	err := json.Indent(indentedDataBuffer, data, "", "  ")
	if err != nil {
		return false, fmt.Errorf("error indenting JSON: %w", err)
	}
	indentedDataBuffer.WriteByte('\n')
	indentedBytes := indentedDataBuffer.Bytes()

	if bytes.Equal(indentedBytes, data) {
		return false, nil
	}

	err = os.WriteFile(filePath, indentedBytes, 0644)
	if err != nil {
		return false, fmt.Errorf("error writing to %s: %w", filePath, err)
	}
	return true, nil
}

// Validates a story graph and rewrites it with canonical indentation.
// Exits non-zero when the graph is invalid or, with -strict, when choices point at missing chapters.
func main() {
	strict := flag.Bool("strict", false, "fail on dangling choice targets")
	check := flag.Bool("check", false, "only validate, never rewrite")
	flag.Parse()

	storyPath := defaultStoryPath
	if flag.NArg() > 0 {
		storyPath = flag.Arg(0)
	}

	data, err := os.ReadFile(storyPath)
	if err != nil {
		log.Fatalf("Error reading story %s: %s", storyPath, err.Error())
	}

	graph, err := story.LoadGraph(data)
	if err != nil {
		log.Fatalf("Invalid story %s: %s", storyPath, err.Error())
	}
	log.Printf("Loaded %d chapters starting at %s", graph.Len(), graph.Start())

	dangling := graph.DanglingReferences()
	for _, ref := range dangling {
		log.Printf("Choice %s in %s points at missing chapter %s", ref.ChoiceID, ref.NodeID, ref.Target)
	}
	if *strict && len(dangling) > 0 {
		log.Fatalf("Found %d dangling choices", len(dangling))
	}

	if *check {
		return
	}

	updated, err := indentAndWrite(data, storyPath)
	if err != nil {
		log.Fatalf("Error formatting story: %s", err.Error())
	}
	if updated {
		log.Printf("Reformatted %s", storyPath)
	}
}
