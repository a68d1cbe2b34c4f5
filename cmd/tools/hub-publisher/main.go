// cmd/tools/hub-publisher/main.go
//
// One-off CLI for pushing this project's files to the model hub:
//
//	hub-publisher whoami
//	hub-publisher create-repo -repo user/house-price-prediction [-private]
//	hub-publisher upload -repo user/house-price-prediction file1 [file2 ...]
//	hub-publisher push -repo user/house-price-prediction
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"housepredict/internal/common/logger"
	"housepredict/internal/hub"
)

const defaultBaseURL = "https://huggingface.co"

// defaultArtifactSet is what `push` uploads when no files are listed.
var defaultArtifactSet = []string{
	"house_price_model.gob",
	"preprocessing_pipeline.gob",
	"README.md",
	"configs/config.yaml",
}

func main() {
	whoamiCmd := flag.NewFlagSet("whoami", flag.ExitOnError)
	createCmd := flag.NewFlagSet("create-repo", flag.ExitOnError)
	uploadCmd := flag.NewFlagSet("upload", flag.ExitOnError)
	pushCmd := flag.NewFlagSet("push", flag.ExitOnError)

	baseWhoami := whoamiCmd.String("base-url", defaultBaseURL, "Hub base URL")

	repoCreate := createCmd.String("repo", "", "Repository ID (e.g. user/house-price-prediction)")
	privateCreate := createCmd.Bool("private", false, "Create the repository as private")
	baseCreate := createCmd.String("base-url", defaultBaseURL, "Hub base URL")

	repoUpload := uploadCmd.String("repo", "", "Repository ID")
	baseUpload := uploadCmd.String("base-url", defaultBaseURL, "Hub base URL")

	repoPush := pushCmd.String("repo", "", "Repository ID")
	privatePush := pushCmd.Bool("private", false, "Create the repository as private")
	basePush := pushCmd.String("base-url", defaultBaseURL, "Hub base URL")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	log := logger.NewStructured("info", "console")
	ctx := context.Background()

	switch os.Args[1] {
	case "whoami":
		whoamiCmd.Parse(os.Args[2:])
		client := newClient(*baseWhoami, log)
		name, err := client.Whoami(ctx)
		if err != nil {
			fail("authentication failed: %v", err)
		}
		fmt.Printf("authenticated as: %s\n", name)

	case "create-repo":
		createCmd.Parse(os.Args[2:])
		requireRepo(*repoCreate, createCmd)
		client := newClient(*baseCreate, log)
		if err := client.CreateRepo(ctx, *repoCreate, *privateCreate); err != nil {
			fail("create repository: %v", err)
		}
		fmt.Printf("repository ready: %s\n", *repoCreate)

	case "upload":
		uploadCmd.Parse(os.Args[2:])
		requireRepo(*repoUpload, uploadCmd)
		files := uploadCmd.Args()
		if len(files) == 0 {
			fmt.Println("Error: at least one file is required for upload.")
			uploadCmd.Usage()
			os.Exit(1)
		}
		client := newClient(*baseUpload, log)
		if n := uploadFiles(ctx, client, *repoUpload, files); n > 0 {
			fail("%d upload(s) failed", n)
		}

	case "push":
		pushCmd.Parse(os.Args[2:])
		requireRepo(*repoPush, pushCmd)
		client := newClient(*basePush, log)

		name, err := client.Whoami(ctx)
		if err != nil {
			fail("authentication failed: %v", err)
		}
		fmt.Printf("authenticated as: %s\n", name)

		if err := client.CreateRepo(ctx, *repoPush, *privatePush); err != nil {
			fail("create repository: %v", err)
		}
		fmt.Printf("repository ready: %s\n", *repoPush)

		if n := uploadFiles(ctx, client, *repoPush, defaultArtifactSet); n > 0 {
			fail("%d upload(s) failed", n)
		}
		fmt.Println("push complete")

	default:
		help()
		os.Exit(1)
	}
}

func newClient(baseURL string, log logger.Logger) *hub.Client {
	return hub.NewClient(baseURL, getToken(), 60*time.Second, log)
}

// getToken reads the hub token from the environment, falling back to an
// interactive prompt.
func getToken() string {
	_ = godotenv.Load()
	if token := os.Getenv("HF_TOKEN"); token != "" {
		return token
	}

	fmt.Println("Enter your hub token (with write permissions):")
	fmt.Print("Token: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		fail("no token provided: set HF_TOKEN or enter one at the prompt")
	}
	token := strings.TrimSpace(line)
	if token == "" {
		fail("no token provided: set HF_TOKEN or enter one at the prompt")
	}
	return token
}

// uploadFiles uploads each file, skipping missing ones with a notice, and
// returns the number of failures.
func uploadFiles(ctx context.Context, client *hub.Client, repoID string, files []string) int {
	failed := 0
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			fmt.Printf("skipped %s (not found)\n", file)
			continue
		}
		if err := client.UploadFile(ctx, repoID, file, file); err != nil {
			fmt.Printf("failed  %s: %v\n", file, err)
			failed++
			continue
		}
		fmt.Printf("uploaded %s\n", file)
	}
	return failed
}

func requireRepo(repo string, cmd *flag.FlagSet) {
	if repo == "" {
		fmt.Println("Error: -repo is required.")
		cmd.Usage()
		os.Exit(1)
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func help() {
	fmt.Println(`usage: hub-publisher <command> [flags]

commands:
  whoami        verify the hub token
  create-repo   create the model repository if it does not exist
  upload        upload the listed files to the repository
  push          create the repository and upload the default artifact set

The hub token is read from HF_TOKEN (a .env file is honored) or prompted for.`)
}
