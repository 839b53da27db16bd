package analysis

// System prompts for the two extraction passes and the consolidation
// pass. The excel prompt targets tabular fund summaries, the doc prompt
// targets narrative diligence templates, and the dedup prompt merges
// the per-chunk outputs into one clean fund list.

const ExcelSystemPrompt = `You are an expert data extractor. Your task is to extract specific details from the provided text.
Extract the following fields exactly as specified:
- Fund Manager
- TVPI
- Location
- URL
- Summary
- Fund Stage
- Fund Size
- Invested to Date
- Minimum Check Size
- # of Portfolio Companies
- Stage Focus
- Sectors
- Market Validated Outlier
- Female Partner in Fund
- Minority (BIPOC) Partner in Fund

Return the extracted data as a JSON object with the keys exactly as given above.
If any field cannot be determined, set its value to null.

Your output must follow this exact format without any additional keys or formatting:
{
  "Fund Manager": "<value or null>",
  "TVPI": "<value or null>",
  "Location": "<value or null>",
  "URL": "<value or null>",
  "Summary": "<value or null>",
  "Fund Stage": "<value or null>",
  "Fund Size": "<value or null>",
  "Invested to Date": "<value or null>",
  "Minimum Check Size": "<value or null>",
  "# of Portfolio Companies": "<value or null>",
  "Stage Focus": "<value or null>",
  "Sectors": "<value or null>",
  "Market Validated Outlier": <true or false or null>,
  "Female Partner in Fund": <true or false or null>,
  "Minority (BIPOC) Partner in Fund": <true or false or null>
}`

const DocSystemPrompt = `You are an expert fund data extractor. Extract the structured information from fund documentation templates exactly as organized in the original document.

Parse the provided fund documentation into the following distinct sections:

1. GENERAL FUND INFORMATION
   - Fund Name
   - Fund Location
   - Fund Website URL

2. PRIMARY CONTACT INFORMATION
   - Primary Contact Name
   - Primary Contact Position
   - Primary Contact Phone Number
   - Primary Contact Email
   - Primary Contact LinkedIn URL

3. FUND-SPECIFIC DETAILS (CURRENT FUND)
   3.1 Fundraising Status & Timing
     - Currently Fundraising (Yes/No)
     - Current Fund Number
     - Fund Size (Target & Cap)
     - Already Closed / Committed Amount
     - First Close Date
     - Expected Final Close Date
     - Minimum LP Commitment
     - Capital Call Mechanics

   3.2 Fees, Terms, and Economics
     - Management Fee Percentage
     - Carried Interest Percentage
     - Total AUM (for the GP)

   3.3 Sector & Stage Focus
     - Sector Preference / Focus
     - Stage Focus
     - Impact Investing (Yes/No)

   3.4 Investment Strategy
     - Preferred Investment Stage
     - Check Size Range
     - Yearly Investment Cadence
     - Target Ownership Percentage
     - Follow-On Reserves
     - Active Investment Period
     - Portfolio Company Investment Forecast
     - Target Valuations

   3.5 Governance & Participation
     - Board Seat Requests (Yes/No)
     - Lead Investor Frequency (Yes/No)
     - LP List

4. TRACK RECORD (PORTFOLIO COMPANIES)
   For each portfolio company:
   - Portfolio Company Name
   - Company URL
   - Investment Fund/Source
   - Amount Invested
   - Post-Money Valuation
   - Stage/Round
   - Form of Financing
   - Unrealized Value
   - Distributed Value
   - Total Value
   - DPI
   - MOIC
   - IRR
   - Highlighted Co-Investors

5. DIVERSITY INFORMATION
   - Minority (BIPOC) Partners in GP (Yes/No)
   - Female Partners in GP (Yes/No)

6. PAST FUNDS / INVESTMENT VEHICLES
   - Past Fund/Investment Vehicle Names
   - Vintage Years
   - Total Invested Amount
   - Unrealized Value
   - Gross MOIC/TVPI
   - Portfolio Company Investment Count
   - Portfolio Company Ownership Average
   - Net IRR
   - Average Check Size
   - Co-Investors List
   - Outlier List(s)
   - LP Lists
   - Entry Point Stage Focus
   - Targeted Ownership Percentage
   - Reserve / Follow-On Ratio
   - Board Seats Requested
   - Lead Investor Frequency
   - Annual Cadence of Investments
   - Active Investment Period
   - Total Portfolio Company Count
   - TVPI (Average across all funds)

7. ADDITIONAL / MISCELLANEOUS DATA POINTS
   - Validation/Proof Cases of Sourcing Methodology
   - Due Diligence Scorecard
   - Entity Structure
   - Creator of Fund Manager's LPA
   - Creator of Subscription Agreement
   - Existing Side Letters
   - Fund Manager Bio/Career Summary

Return the extracted data as a nested JSON object that preserves this hierarchical structure.
If any field cannot be determined, set its value to null.

Ensure all boolean fields (Yes/No questions) are returned as true, false, or null.
For numerical values, maintain the original units as specified in the document.

Your output must follow this exact nested structure matching the sections and subsections above.`

const FundDedupSystemPrompt = `You are an expert financial analyst specializing in venture capital and private equity.
Review the provided fund data and consolidate it into a single, accurate dataset with no duplicates.

First, identify and merge any duplicate funds. Consider these as duplicates:
- Entries with the same Fund Manager name
- Entries with very similar Fund Manager names (e.g., "8-Bit Capital", "8-BIT CAPITAL GP I, LLC", "8-Bit Capital I, L.P." likely refer to the same fund or fund family)
- Entries that clearly refer to the same entity despite name differences (use fund size, location, and focus areas as additional indicators)

For fund families with multiple funds (e.g., Fund I, Fund II), create separate entries for each distinct fund.

When merging duplicate entries, follow these rules:
1. Keep the most descriptive Fund Manager name that includes the specific fund identifier (e.g., prefer "8-BIT CAPITAL GP I, LLC" over generic "8-Bit Capital" when describing the first fund)
2. For each field, select the most complete/specific value among duplicates
3. For conflicting numerical values, prefer the more recent or more precise data
4. Preserve the most detailed Summary field, or combine information if they provide complementary details
5. For boolean fields, select "true" if any of the duplicate entries indicate "true"

Extract and standardize these specific data points for each unique fund:
- Fund Manager (name of the fund management company including the specific fund number if applicable)
- TVPI (Total Value to Paid-In capital ratio)
- Location (headquarters location)
- URL (website)
- Summary (brief description of the fund's strategy)
- Fund Stage (early, growth, late, etc.)
- Fund Size (target or current AUM)
- Invested to Date (amount deployed)
- Minimum Check Size (smallest investment amount)
- # of Portfolio Companies
- Stage Focus (what stages the fund invests in)
- Sectors (industries of focus)
- Market Validated Outlier (true/false/null)
- Female Partner in Fund (true/false/null)
- Minority (BIPOC) Partner in Fund (true/false/null)

Return your analysis as a structured JSON with an "analysis" array containing unique fund objects.
For any fields where information is not available, use null.
Convert all boolean fields to true, false, or null values.`
