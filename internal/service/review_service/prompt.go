package review_service

import (
	"fmt"
	"strings"
)

func buildProblemContext(req ReviewRequest) string {
	var b strings.Builder
	if req.ProblemTitle != "" {
		fmt.Fprintf(&b, "**Problem Title:** %s\n\n", req.ProblemTitle)
	}
	if req.ProblemDescription != "" {
		fmt.Fprintf(&b, "**Problem Description:**\n%s\n\n", req.ProblemDescription)
	}
	if req.ProblemConstraints != "" {
		fmt.Fprintf(&b, "**Constraints:**\n%s\n\n", req.ProblemConstraints)
	}
	if len(req.ProblemExamples) > 0 {
		b.WriteString("**Examples:**\n")
		for i, ex := range req.ProblemExamples {
			fmt.Fprintf(&b, "Example %d:\n  Input: %s\n  Output: %s\n", i+1, ex.Input, ex.Output)
			if ex.Explanation != "" {
				fmt.Fprintf(&b, "  Explanation: %s\n", ex.Explanation)
			}
			b.WriteString("\n")
		}
	}
	if len(req.TestCases) > 0 {
		b.WriteString("**Test Cases:**\n")
		for i, tc := range req.TestCases {
			fmt.Fprintf(&b, "Test Case %d:\n  Input: %s\n  Expected Output: %s\n\n", i+1, tc.Input, tc.Output)
		}
	}
	return b.String()
}

var reviewSections = []string{
	"**Code Rating**\n[Rating]/100",
	"**Algorithm Correctness**\n[Whether the algorithm correctly solves the given problem]",
	"**Edge Case Handling**\n[How the code handles edge cases from the constraints and examples]",
	"**Time Complexity**\n[Big O notation and explanation]",
	"**Space Complexity**\n[Big O notation and explanation]",
	"**Code Quality**\n[Readability, maintainability and coding standards]",
	"**Bug Detection**\n[Specific bugs with line references, or no bugs detected]",
}

var closingSections = []string{
	"**Optimization Opportunities**\n[Specific improvements, or already optimal]",
	"**Best Practices Adherence**\n[Coding best practices for competitive programming]",
	"**Improvement Suggestions**\n[Actionable suggestions with code examples if needed]",
	"**Alternative Approaches**\n[Other valid approaches to the problem, if any]",
}

func buildPrompt(req ReviewRequest, problemContext string) string {
	var b strings.Builder
	b.WriteString("You are an expert code review assistant specializing in competitive programming and algorithm analysis.\n\n")
	if problemContext != "" {
		fmt.Fprintf(&b, "**PROBLEM CONTEXT:**\n%s\n", problemContext)
	}
	fmt.Fprintf(&b, "**TASK:** Review the following %s code solution and provide a comprehensive analysis in the following structured format:\n\n", req.Language)
	for _, s := range reviewSections {
		b.WriteString(s + "\n\n")
	}
	b.WriteString("**Test Case Analysis**\n")
	if strings.Contains(problemContext, "Test Cases:") {
		b.WriteString("[How the code would perform on the provided test cases]\n\n")
	} else {
		b.WriteString("[General test case considerations]\n\n")
	}
	for _, s := range closingSections {
		b.WriteString(s + "\n\n")
	}

	description := req.Description
	if description == "" {
		description = req.Language + " code solution for the given problem"
	}
	fmt.Fprintf(&b, "---\n\n**Programming Language:** %s\n**Solution Context:** %s\n**Review Focus:** %s\n\n", req.Language, description, req.Prompt)
	fmt.Fprintf(&b, "**Code to Review:**\n```%s\n%s\n```\n\n", strings.ToLower(req.Language), req.Code)
	b.WriteString("Please provide a thorough analysis considering both the problem requirements and the code implementation.")
	return b.String()
}
