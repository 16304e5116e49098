package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "seed":
		seedCmd(apiURL, args)
	case "smoke":
		smokeCmd(apiURL, args)
	case "watch":
		watchCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Recipe Simulator - Development tool for the recipe API

USAGE:
  simulator <command> [options]

COMMANDS:
  seed      Register fake cooks and publish sample recipes for each
  smoke     Run the register/login/recipe/logout flow and check every response
  watch     Print recipe feed events as they arrive
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Create 3 cooks with 2 recipes each
  simulator seed

  # Create 5 cooks with 4 recipes each
  simulator seed --users=5 --recipes=4

  # Check a deployed server end to end
  API_URL=https://recipes.example.com simulator smoke

  # Follow the live feed
  simulator watch`)
}

var sampleRecipes = []Recipe{
	{
		Title:       "Shakshuka",
		Description: "Eggs poached in a spiced tomato and pepper sauce.",
		Ingredients: []Ingredient{{Name: "eggs"}, {Name: "tomatoes"}, {Name: "red pepper"}, {Name: "cumin"}},
	},
	{
		Title:       "Pad Thai",
		Description: "Stir-fried rice noodles with tamarind, peanuts and lime.",
		Ingredients: []Ingredient{{Name: "rice noodles"}, {Name: "tamarind paste"}, {Name: "peanuts"}, {Name: "lime"}},
	},
	{
		Title:       "Banana Bread",
		Description: "A moist loaf for over-ripe bananas.",
		Ingredients: []Ingredient{{Name: "bananas"}, {Name: "flour"}, {Name: "butter"}, {Name: "sugar"}},
	},
	{
		Title:       "Minestrone",
		Description: "Vegetable soup with beans and small pasta.",
		Ingredients: []Ingredient{{Name: "cannellini beans"}, {Name: "carrots"}, {Name: "celery"}, {Name: "ditalini"}},
	},
	{
		Title:       "Guacamole",
		Description: "Chunky avocado dip.",
		Ingredients: []Ingredient{{Name: "avocados"}, {Name: "lime"}, {Name: "onion"}, {Name: "cilantro"}},
	},
}

func sampleRecipe(apiURL string, n int) Recipe {
	recipe := sampleRecipes[n%len(sampleRecipes)]
	recipe.ImgPath = fmt.Sprintf("%s/images/sample-%d.jpg", apiURL, n%len(sampleRecipes))
	return recipe
}

func uniqueSuffix() string {
	return fmt.Sprintf("%d", time.Now().UnixNano()%1000000)
}

func seedCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	users := fs.Int("users", 3, "Number of cooks to create")
	recipes := fs.Int("recipes", 2, "Number of recipes per cook")
	password := fs.String("password", "testpassword123", "Password for every created cook")
	fs.Parse(args)

	if *users < 1 || *recipes < 0 {
		fmt.Println("Error: --users must be at least 1 and --recipes cannot be negative")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== Recipe Simulator: Seed ===")
	fmt.Println()

	created := 0
	for i := 0; i < *users; i++ {
		username := fmt.Sprintf("cook%d_%s", i+1, uniqueSuffix())
		email := username + "@example.com"

		if _, err := client.Register(email, username, *password); err != nil {
			fmt.Printf("  [%d/%d] FAILED to register: %v\n", i+1, *users, err)
			continue
		}

		_, token, err := client.Login(email, *password)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to login: %v\n", i+1, *users, err)
			continue
		}

		for j := 0; j < *recipes; j++ {
			recipe, err := client.CreateRecipe(token, sampleRecipe(apiURL, i+j))
			if err != nil {
				fmt.Printf("  [%d/%d] FAILED to create recipe: %v\n", i+1, *users, err)
				continue
			}
			created++
			fmt.Printf("  [%d/%d] %s published %q (%s)\n", i+1, *users, username, recipe.Title, recipe.ID)
		}

		items := []ShoppingItem{{Name: "olive oil", Amount: 1}, {Name: "garlic", Amount: float64(i + 2)}}
		if err := client.ReplaceShoppingList(token, items); err != nil {
			fmt.Printf("Warning: Failed to set shopping list for %s: %v\n", username, err)
		}

		fmt.Printf("  [%d/%d] %s <%s> password=%s\n", i+1, *users, username, email, *password)
		fmt.Printf("          token: %s\n", token)
	}

	fmt.Println()
	fmt.Printf("Done! Created %d recipes. Browse them at: %s/api/v1/recipes\n", created, apiURL)
}

func smokeCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("smoke", flag.ExitOnError)
	fs.Parse(args)

	client := NewAPIClient(apiURL)
	suffix := uniqueSuffix()
	password := "secret1"

	fmt.Println("=== Recipe Simulator: Smoke ===")
	fmt.Println()

	step := func(name string, fn func() error) {
		fmt.Printf("%s... ", name)
		if err := fn(); err != nil {
			fmt.Printf("FAILED\n  Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("OK")
	}

	var ownerToken, otherToken string
	var recipe *Recipe

	ownerEmail := "owner_" + suffix + "@example.com"
	otherEmail := "other_" + suffix + "@example.com"

	step("Registering owner", func() error {
		_, err := client.Register(ownerEmail, "owner_"+suffix, password)
		return err
	})
	step("Rejecting duplicate email", func() error {
		_, err := client.Register(ownerEmail, "dupe_"+suffix, password)
		return expectStatus(err, http.StatusBadRequest)
	})
	step("Registering second user", func() error {
		_, err := client.Register(otherEmail, "other_"+suffix, password)
		return err
	})
	step("Rejecting wrong password", func() error {
		_, _, err := client.Login(ownerEmail, "wrong-password")
		return expectStatus(err, http.StatusUnauthorized)
	})
	step("Logging in", func() error {
		var err error
		if _, ownerToken, err = client.Login(ownerEmail, password); err != nil {
			return err
		}
		_, otherToken, err = client.Login(otherEmail, password)
		return err
	})
	step("Creating recipe", func() error {
		var err error
		recipe, err = client.CreateRecipe(ownerToken, sampleRecipe(apiURL, 0))
		return err
	})
	step("Listing recipe on owner", func() error {
		me, err := client.Me(ownerToken)
		if err != nil {
			return err
		}
		for _, id := range me.Recipes {
			if id == recipe.ID {
				return nil
			}
		}
		return fmt.Errorf("recipe %s missing from owner's recipes", recipe.ID)
	})
	step("Hiding recipe from other user's update", func() error {
		_, err := client.UpdateRecipe(otherToken, recipe.ID, sampleRecipe(apiURL, 1))
		return expectStatus(err, http.StatusNotFound)
	})
	step("Hiding recipe from other user's delete", func() error {
		return expectStatus(client.DeleteRecipe(otherToken, recipe.ID), http.StatusNotFound)
	})
	step("Updating recipe as owner", func() error {
		updated, err := client.UpdateRecipe(ownerToken, recipe.ID, sampleRecipe(apiURL, 2))
		if err != nil {
			return err
		}
		if updated.Title != sampleRecipes[2].Title {
			return fmt.Errorf("title not updated: %q", updated.Title)
		}
		return nil
	})
	step("Deleting recipe as owner", func() error {
		if err := client.DeleteRecipe(ownerToken, recipe.ID); err != nil {
			return err
		}
		_, err := client.GetRecipe(recipe.ID)
		return expectStatus(err, http.StatusNotFound)
	})
	step("Logging out", func() error {
		if err := client.Logout(ownerToken); err != nil {
			return err
		}
		_, err := client.Me(ownerToken)
		return expectStatus(err, http.StatusUnauthorized)
	})

	fmt.Println()
	fmt.Println("All checks passed.")
}

// expectStatus succeeds only when err is a StatusError with the given status.
func expectStatus(err error, status int) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Status == status {
		return nil
	}
	if err == nil {
		return fmt.Errorf("expected status %d, request succeeded", status)
	}
	return fmt.Errorf("expected status %d: %w", status, err)
}

func watchCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	fs.Parse(args)

	client := NewAPIClient(apiURL)

	conn, _, err := websocket.DefaultDialer.Dial(client.FeedURL(), nil)
	if err != nil {
		fmt.Printf("Failed to connect to feed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n\n", client.FeedURL())

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				fmt.Printf("Feed closed: %v\n", err)
				return
			}

			var msg struct {
				Type      string `json:"type"`
				Payload   Recipe `json:"payload"`
				Timestamp int64  `json:"timestamp"`
				Seq       int64  `json:"seq"`
			}
			if err := json.Unmarshal(data, &msg); err != nil {
				fmt.Printf("Unreadable message: %s\n", string(data))
				continue
			}

			at := time.UnixMilli(msg.Timestamp).Format(time.Kitchen)
			fmt.Printf("#%d %s %-15s %q (%s)\n", msg.Seq, at, msg.Type, msg.Payload.Title, msg.Payload.ID)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
