package assistant

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Key identifies a personality.
type Key string

const (
	Creative  Key = "creative"
	Technical Key = "technical"
	Marketing Key = "marketing"
	Educator  Key = "educator"
)

// ErrUnknownPersonality is matched by every *UnknownPersonalityError.
var ErrUnknownPersonality = errors.New("unknown personality")

// UnknownPersonalityError reports a key outside the fixed personality set.
type UnknownPersonalityError struct {
	Key Key
}

func (e *UnknownPersonalityError) Error() string {
	return fmt.Sprintf("unknown personality %q", string(e.Key))
}

func (e *UnknownPersonalityError) Unwrap() error {
	return ErrUnknownPersonality
}

// Rule is one row of a personality's simulated decision table.
type Rule struct {
	Name        string
	Keywords    []string
	Content     string
	Suggestions []string
	Code        string
}

// Matches reports whether any keyword occurs in the lower-cased utterance.
// A single-word keyword matches the start of a word, so "crash" matches
// "crashes" but "art" does not match "start". A multi-word keyword must
// appear as whole words.
func (r Rule) Matches(lowered string) bool {
	words := strings.FieldsFunc(lowered, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})
	joined := " " + strings.Join(words, " ") + " "

	for _, kw := range r.Keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(joined, " "+kw+" ") {
				return true
			}
			continue
		}
		for _, w := range words {
			if strings.HasPrefix(w, kw) {
				return true
			}
		}
	}
	return false
}

// Profile describes a personality. Profiles handed out by a Registry are
// copies and may be modified freely by the caller.
type Profile struct {
	Key          Key
	Label        string
	SystemPrompt string
	Flavor       []string
	Rules        []Rule
	Fallback     Rule
}

func (p Profile) clone() Profile {
	c := p
	c.Flavor = append([]string(nil), p.Flavor...)
	c.Rules = make([]Rule, len(p.Rules))
	for i, r := range p.Rules {
		c.Rules[i] = r.clone()
	}
	c.Fallback = p.Fallback.clone()
	return c
}

func (r Rule) clone() Rule {
	c := r
	c.Keywords = append([]string(nil), r.Keywords...)
	if r.Suggestions != nil {
		c.Suggestions = append([]string(nil), r.Suggestions...)
	}
	return c
}

// Registry is the immutable set of personalities. It is safe for concurrent
// use by any number of sessions.
type Registry struct {
	order    []Key
	profiles map[Key]Profile
}

// NewRegistry builds the registry with the built-in personalities.
func NewRegistry() *Registry {
	profiles := builtinProfiles()
	r := &Registry{
		order:    make([]Key, 0, len(profiles)),
		profiles: make(map[Key]Profile, len(profiles)),
	}
	for _, p := range profiles {
		r.order = append(r.order, p.Key)
		r.profiles[p.Key] = p
	}
	return r
}

// Profile returns the profile for key.
func (r *Registry) Profile(key Key) (Profile, error) {
	p, ok := r.profiles[key]
	if !ok {
		return Profile{}, &UnknownPersonalityError{Key: key}
	}
	return p.clone(), nil
}

// Keys returns the personality keys in display order.
func (r *Registry) Keys() []Key {
	return append([]Key(nil), r.order...)
}

// Has reports whether key names a known personality.
func (r *Registry) Has(key Key) bool {
	_, ok := r.profiles[key]
	return ok
}

// ParseKey normalises user input into a Key. It does not validate.
func ParseKey(s string) Key {
	return Key(strings.ToLower(strings.TrimSpace(s)))
}

func builtinProfiles() []Profile {
	return []Profile{
		{
			Key:   Creative,
			Label: "Creative Director",
			SystemPrompt: `You are a creative director for indie web games built with PixiJS, Babylon.js or A-Frame.
You help with game concepts, story, characters, art direction and level design.

Guidelines:
- Be enthusiastic and imaginative, but keep ideas achievable for a small team
- Offer concrete, vivid examples rather than abstract advice
- When listing ideas, introduce them with "Try:" followed by a bulleted list of at most 3 items
- Use fenced code blocks only when code genuinely helps`,
			Flavor: []string{
				"Ooh, I love where this is going!",
				"Let's get those creative gears turning.",
				"Picture this for a second...",
			},
			Rules: []Rule{
				{
					Name:     "story",
					Keywords: []string{"story", "character", "narrative", "plot", "lore"},
					Content: "A memorable story starts with a character who wants something badly and a world that keeps saying no. " +
						"Give your hero one clear goal, one personal flaw and one rival whose goal directly conflicts with theirs. " +
						"Reveal the world through play: let levels, items and enemy designs carry the lore instead of long text screens.",
					Suggestions: []string{
						"Write a one-sentence pitch: who wants what, and what stands in the way",
						"Give each level a single emotional beat",
						"Hide lore in collectibles players can skip",
					},
				},
				{
					Name:     "level",
					Keywords: []string{"level", "world", "map", "environment"},
					Content: "Great levels teach, test and then twist. Introduce one mechanic safely, challenge the player with it, " +
						"then combine it with something they already know. Use color and lighting to guide the eye toward the goal.",
					Suggestions: []string{
						"Sketch the critical path before adding detail",
						"Place a safe practice area before each new hazard",
						"End every level with a small visual reward",
					},
				},
				{
					Name:     "art",
					Keywords: []string{"art", "style", "color", "palette", "sprite"},
					Content: "Pick a constrained palette of four to six colors and commit to it. A consistent silhouette language " +
						"(round shapes for friends, sharp shapes for threats) reads instantly even on a small phone screen.",
					Suggestions: []string{
						"Build a mood board of five reference images",
						"Test sprites in grayscale to check readability",
						"Reserve your brightest color for interactive objects",
					},
				},
			},
			Fallback: Rule{
				Name: "inspiration",
				Content: "Every great game starts with a single spark of fun. Try describing the one moment you want players to remember, " +
					"then build everything else around making that moment happen as often as possible.",
				Suggestions: []string{
					"Describe your core loop in one sentence",
					"Prototype the fun part first, polish later",
					"Play three games in the same genre for inspiration",
				},
			},
		},
		{
			Key:   Technical,
			Label: "Technical Lead",
			SystemPrompt: `You are a senior game engineer specialised in browser games using PixiJS, Babylon.js and A-Frame.
You help with architecture, rendering, physics, performance and debugging.

Guidelines:
- Give clear, practical, copy-paste-ready code examples when relevant
- Format code with triple backticks and a language tag
- Prefer the engine's built-in solutions before suggesting third-party libraries
- Put follow-up actions after a "Try:" line as a bulleted list of at most 3 items
- Be concise but complete`,
			Flavor: []string{
				"Let's dig into the technical side.",
				"Good question, here's how I'd approach it.",
				"Time to look under the hood.",
			},
			Rules: []Rule{
				{
					Name:     "performance",
					Keywords: []string{"optimize", "optimise", "performance"},
					Content: "Performance in browser games usually comes down to three things: fewer draw calls, less garbage, and less work per frame. " +
						"Batch sprites that share a texture, reuse objects instead of allocating them every frame, and move expensive logic " +
						"out of the render loop. Here's an object pool you can drop into any engine.",
					Suggestions: []string{
						"Pack sprites into a texture atlas to cut draw calls",
						"Profile a frame in the browser dev tools before optimizing",
						"Pool bullets, particles and enemies instead of recreating them",
					},
					Code: `class ObjectPool {
  constructor(create, reset, size = 50) {
    this.create = create;
    this.reset = reset;
    this.items = Array.from({ length: size }, create);
  }

  acquire() {
    return this.items.pop() ?? this.create();
  }

  release(item) {
    this.reset(item);
    this.items.push(item);
  }
}`,
				},
				{
					Name:     "physics",
					Keywords: []string{"physics", "collision", "gravity"},
					Content: "For most 2D games simple axis-aligned bounding boxes are enough and much cheaper than a full physics engine. " +
						"Reach for a dedicated engine such as Matter.js or Cannon.js only when you need joints, stacking or realistic rotation.",
					Suggestions: []string{
						"Start with AABB checks and measure before adding a physics engine",
						"Run physics on a fixed timestep",
						"Use spatial hashing when you have many moving bodies",
					},
					Code: `function intersects(a, b) {
  return a.x < b.x + b.width &&
    a.x + a.width > b.x &&
    a.y < b.y + b.height &&
    a.y + a.height > b.y;
}`,
				},
				{
					Name:     "debugging",
					Keywords: []string{"bug", "error", "crash", "broken", "not working"},
					Content: "Start by reproducing the problem reliably, then shrink it: disable systems one at a time until the bug disappears. " +
						"Log state at the boundaries between systems rather than everywhere, and check the browser console for the first error, not the last.",
					Suggestions: []string{
						"Write down the exact steps that reproduce the bug",
						"Add an on-screen debug overlay for key state",
						"Check the first console error before anything else",
					},
				},
			},
			Fallback: Rule{
				Name: "guidance",
				Content: "From a technical standpoint, keep your game loop simple: read input, update state, render. " +
					"Separate game state from rendering so you can test logic without a canvas, and keep each system small enough to reason about.",
				Suggestions: []string{
					"Split update and render into separate functions",
					"Keep game state in plain objects",
					"Add a fixed-timestep update for deterministic behavior",
				},
			},
		},
		{
			Key:   Marketing,
			Label: "Marketing Strategist",
			SystemPrompt: `You are a marketing strategist for small game studios and solo developers.
You help with positioning, launches, store pages, community building and monetization.

Guidelines:
- Be practical and budget-conscious
- Tie every recommendation to a measurable outcome
- Put next steps after a "Consider:" line as a bulleted list of at most 3 items
- Avoid jargon`,
			Flavor: []string{
				"Let's talk about getting your game in front of players.",
				"Here's the strategic angle.",
				"Marketing starts earlier than most people think!",
			},
			Rules: []Rule{
				{
					Name:     "launch",
					Keywords: []string{"launch", "release", "trailer", "announce"},
					Content: "A good launch is built in the months before release. Announce early with a short, gameplay-first trailer, " +
						"collect wishlists or sign-ups, and line up streamers and press a few weeks ahead so coverage lands on launch day.",
					Suggestions: []string{
						"Cut a 30-second trailer that shows gameplay in the first 5 seconds",
						"Start a mailing list before you announce",
						"Send press keys two weeks before launch",
					},
				},
				{
					Name:     "monetization",
					Keywords: []string{"monetize", "monetise", "price", "pricing", "revenue", "ads"},
					Content: "Choose a monetization model that matches how people play your game. Short-session casual games suit rewarded ads, " +
						"while deeper experiences earn more as a one-time purchase or with cosmetic-only extras that never block progress.",
					Suggestions: []string{
						"Compare prices of five similar games",
						"Offer rewarded ads instead of interstitials",
						"Never sell power in a competitive game",
					},
				},
				{
					Name:     "community",
					Keywords: []string{"community", "social", "discord", "audience"},
					Content: "Your first hundred fans matter more than your first ten thousand impressions. Share development progress regularly, " +
						"reply to every comment early on, and give your community a home where they can talk to each other, not just to you.",
					Suggestions: []string{
						"Post a short devlog every week",
						"Open a community server once you have regular commenters",
						"Invite early fans to playtest",
					},
				},
			},
			Fallback: Rule{
				Name: "positioning",
				Content: "Strong marketing starts with knowing who your game is for. Describe your ideal player, the games they already love, " +
					"and the one thing your game does that those games don't. That sentence becomes your store page, your trailer and your pitch.",
				Suggestions: []string{
					"Write a one-line hook for your game",
					"List three comparable titles",
					"Capture a striking screenshot every week",
				},
			},
		},
		{
			Key:   Educator,
			Label: "Patient Educator",
			SystemPrompt: `You are a patient teacher helping beginners learn game development with web technologies.
You explain concepts step by step, check understanding and encourage experimentation.

Guidelines:
- Assume little prior knowledge and define new terms
- Use small, runnable code examples in fenced code blocks
- End with "You could:" followed by a bulleted list of at most 3 practice ideas
- Celebrate progress`,
			Flavor: []string{
				"Great question, let's learn this together!",
				"Don't worry, this trips up everyone at first.",
				"Let's break it down step by step.",
			},
			Rules: []Rule{
				{
					Name:     "getting-started",
					Keywords: []string{"start", "begin", "beginner", "first game", "new to"},
					Content: "The best first game is a tiny one. Start with something you can finish in a weekend, like a clicker or a simple dodge game. " +
						"You'll learn the game loop, input and drawing, which are the building blocks of every bigger project.",
					Suggestions: []string{
						"Follow the beginner template to draw your first sprite",
						"Make a square move with the arrow keys",
						"Add a score counter that goes up over time",
					},
					Code: `const app = new PIXI.Application({ width: 800, height: 600 });
document.body.appendChild(app.view);

const player = PIXI.Sprite.from('player.png');
app.stage.addChild(player);

app.ticker.add((delta) => {
  player.x += 2 * delta;
});`,
				},
				{
					Name:     "concept",
					Keywords: []string{"what is", "explain", "how does", "why"},
					Content: "Let's unpack it in three steps: what it is, why games need it, and how you'd use it in a tiny example. " +
						"Understanding the why makes the how much easier to remember, so try to connect each new idea to something you've already built.",
					Suggestions: []string{
						"Explain the idea back in your own words",
						"Change one value in an example and predict the result",
						"Build the smallest possible demo of the concept",
					},
				},
				{
					Name:     "practice",
					Keywords: []string{"practice", "exercise", "learn", "tutorial"},
					Content: "Learning sticks when you build. Pick one concept per session, write a small demo that uses it, then change it until it breaks. " +
						"Fixing what you broke is where the real understanding happens.",
					Suggestions: []string{
						"Recreate a classic arcade game one mechanic at a time",
						"Keep a journal of what you learned each session",
						"Share your demo and ask for one piece of feedback",
					},
				},
			},
			Fallback: Rule{
				Name: "encouragement",
				Content: "Every game developer started exactly where you are. Break your goal into the smallest possible steps, " +
					"finish each one, and celebrate it. Small finished projects teach more than big unfinished ones.",
				Suggestions: []string{
					"Pick one small feature to build today",
					"Read through one of the starter templates",
					"Ask about any term you haven't seen before",
				},
			},
		},
	}
}
